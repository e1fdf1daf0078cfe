package services

import (
	"testing"
	"time"

	"pennywise/internal/events"
	"pennywise/internal/models"
	"pennywise/internal/testutil"
)

func TestChangesAreJournaled(t *testing.T) {
	l, _ := newTestLedger(t, Options{})

	account := mustAccount(t, l, "Main", "10")

	records, err := l.Changes.ListSince(0, 0)
	testutil.AssertNoError(t, err)

	// account create, Initial Balance category, opening transaction, balance update
	want := []struct {
		table string
		op    models.ChangeOp
	}{
		{models.TableAccounts, models.ChangeOpCreate},
		{models.TableCategories, models.ChangeOpCreate},
		{models.TableTransactions, models.ChangeOpCreate},
		{models.TableAccounts, models.ChangeOpUpdate},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d journal rows, got %d: %+v", len(want), len(records), records)
	}
	for i, w := range want {
		if records[i].Table != w.table || records[i].Op != w.op {
			t.Errorf("row %d: expected %s/%s, got %s/%s", i, w.table, w.op, records[i].Table, records[i].Op)
		}
	}
	if records[0].RecordID != account.ID {
		t.Errorf("expected record id %d, got %d", account.ID, records[0].RecordID)
	}

	after, err := l.Changes.ListSince(records[1].Seq, 0)
	testutil.AssertNoError(t, err)
	if len(after) != 2 {
		t.Errorf("expected 2 rows after seq %d, got %d", records[1].Seq, len(after))
	}
}

func TestFailedWriteIsNotJournaled(t *testing.T) {
	l, _ := newTestLedger(t, Options{})
	account := mustAccount(t, l, "Main", "0")
	income := mustCategory(t, l, "Salary", models.CategoryTypeIncome)

	before, err := l.Changes.ListSince(0, 0)
	testutil.AssertNoError(t, err)

	_, err = l.Transactions.CreateTransaction(TransactionInput{
		Amount: testutil.Dec("5"), Type: models.TransactionTypeExpense,
		CategoryID: &income.ID, AccountID: account.ID,
	})
	testutil.AssertAppError(t, err, "CATEGORY_TYPE_MISMATCH")

	after, err := l.Changes.ListSince(0, 0)
	testutil.AssertNoError(t, err)
	if len(after) != len(before) {
		t.Errorf("expected no journal rows for a rejected write, got %d new", len(after)-len(before))
	}
}

func TestChangesArePublished(t *testing.T) {
	l, _ := newTestLedger(t, Options{})
	sub := l.Broker.Subscribe(models.TableCategories)
	defer sub.Close()

	cat := mustCategory(t, l, "Books", models.CategoryTypeExpense)
	mustAccount(t, l, "Ignored", "0")

	select {
	case ev := <-sub.Events():
		if ev.Table != models.TableCategories || ev.Op != models.ChangeOpCreate || ev.RecordID != cat.ID {
			t.Errorf("unexpected event %+v", ev)
		}
		if ev.Seq == 0 {
			t.Error("expected event to carry the journal sequence")
		}
	case <-time.After(time.Second):
		t.Fatal("expected a category event")
	}

	select {
	case ev := <-sub.Events():
		t.Errorf("expected account events to be filtered out, got %+v", ev)
	default:
	}
}

func TestNilBrokerLedger(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var broker *events.Broker
	l := NewLedger(db, broker, Options{})

	_, err := l.Categories.CreateCategory("Quiet", models.CategoryTypeExpense, "", "")
	testutil.AssertNoError(t, err)
}
