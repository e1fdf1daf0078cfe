package models

import "regexp"

// IconTag is a symbolic icon name. The presentation layer resolves tags to
// assets; the ledger only checks that a tag belongs to the known set.
type IconTag string

const (
	IconWallet       IconTag = "wallet"
	IconBriefcase    IconTag = "briefcase"
	IconLaptop       IconTag = "laptop"
	IconTrendingUp   IconTag = "trending-up"
	IconUtensils     IconTag = "utensils"
	IconHome         IconTag = "home"
	IconCar          IconTag = "car"
	IconFilm         IconTag = "film"
	IconZap          IconTag = "zap"
	IconCreditCard   IconTag = "credit-card"
	IconPiggyBank    IconTag = "piggy-bank"
	IconGift         IconTag = "gift"
	IconShoppingCart IconTag = "shopping-cart"
	IconHeart        IconTag = "heart"
	IconBook         IconTag = "book"
	IconBank         IconTag = "bank"
)

var knownIcons = map[IconTag]struct{}{
	IconWallet: {}, IconBriefcase: {}, IconLaptop: {}, IconTrendingUp: {},
	IconUtensils: {}, IconHome: {}, IconCar: {}, IconFilm: {}, IconZap: {},
	IconCreditCard: {}, IconPiggyBank: {}, IconGift: {}, IconShoppingCart: {},
	IconHeart: {}, IconBook: {}, IconBank: {},
}

// Valid reports whether the tag is empty or one of the known icons.
func (t IconTag) Valid() bool {
	if t == "" {
		return true
	}
	_, ok := knownIcons[t]
	return ok
}

// IconTags returns every known tag.
func IconTags() []IconTag {
	tags := make([]IconTag, 0, len(knownIcons))
	for t := range knownIcons {
		tags = append(tags, t)
	}
	return tags
}

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidColor reports whether c is empty or a #rgb / #rrggbb hex color.
func ValidColor(c string) bool {
	return c == "" || hexColorRegex.MatchString(c)
}
