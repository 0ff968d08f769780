package stan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachwell/creator-scout/internal/model"
)

func TestDerive_FullStorefront(t *testing.T) {
	snap := ParseSnapshot(storefrontFixture, 12)
	profile := Derive(7, "mayalifts", snap)

	assert.Equal(t, int64(7), profile.IdentityID)
	assert.Equal(t, "Maya Lifts", profile.ProfileName)
	assert.Equal(t, "mayalifts", profile.Handle)
	assert.Contains(t, profile.Bio, "Helping 10k+ people")
	assert.Equal(t, "maya@mayalifts.com", profile.Email)
	assert.Equal(t, "https://assets.stan.store/header/mayalifts.jpg", profile.HeaderImageURL)

	assert.Len(t, profile.Offers, 4)
	assert.Equal(t, []float64{149, 99, 15}, profile.PricePoints)
	assert.Contains(t, profile.ProductTypes, "coaching")
	assert.Contains(t, profile.ProductTypes, "course")
	assert.Contains(t, profile.ProductTypes, "membership")

	assert.Len(t, profile.OutboundSocials, 2)
	assert.Equal(t, model.CTAStyleConsultative, profile.CTAStyle)

	// Everything present plus both bonuses.
	assert.InDelta(t, 1.0, profile.Confidence, 1e-9)
}

func TestNameAndHandle_FromTitle(t *testing.T) {
	snap := &Snapshot{Title: "Coach Dan (@coachdan) | Stan Store"}
	name, handle := nameAndHandle(snap, "coach-dan")
	assert.Equal(t, "Coach Dan", name)
	assert.Equal(t, "coachdan", handle)
}

func TestNameAndHandle_SlugFallback(t *testing.T) {
	snap := &Snapshot{Title: "Coach Dan | Stan Store"}
	name, handle := nameAndHandle(snap, "coach-dan")
	assert.Equal(t, "Coach Dan", name)
	assert.Equal(t, "coach-dan", handle)
}

func TestNameAndHandle_EmptyPageUsesSlug(t *testing.T) {
	name, handle := nameAndHandle(&Snapshot{}, "maya-lifts")
	assert.Equal(t, "Maya Lifts", name)
	assert.Equal(t, "maya-lifts", handle)
}

func TestPricePoints_DedupesAndSorts(t *testing.T) {
	snap := &Snapshot{
		OfferCards: []model.OfferCard{{Title: "A", Price: "$99"}, {Title: "B", Price: "$15"}},
		Text:       "Get it for $99 today or the bundle at $1,299.00",
	}
	assert.Equal(t, []float64{1299, 99, 15}, pricePoints(snap))
}

func TestClassifyCTA(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.CTAStyle
	}{
		{"consultative", "Book a call with me", model.CTAStyleConsultative},
		{"transactional", "Buy now and get instant access", model.CTAStyleTransactional},
		{"community", "Join the community today", model.CTAStyleCommunity},
		{"inbound dm", "DM me the word GROW", model.CTAStyleInboundDM},
		{"generic", "Welcome to my page", model.CTAStyleGeneric},
		{"consultative beats transactional", "Book a call or buy now", model.CTAStyleConsultative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyCTA(&Snapshot{Text: tt.text}))
		})
	}
}

func TestClassifyProducts(t *testing.T) {
	snap := &Snapshot{Text: "An 8 week course with a meal plan PDF and a Notion template"}
	types := classifyProducts(snap)
	assert.Contains(t, types, "course")
	assert.Contains(t, types, "template")
	assert.Contains(t, types, "digital_guide")
	assert.NotContains(t, types, "service")
}

func TestOutboundSocials_FiltersAnalytics(t *testing.T) {
	out := outboundSocials([]string{
		"https://instagram.com/maya",
		"https://stan.store/other",
		"https://www.googletagmanager.com/gtag",
	})
	assert.Equal(t, []string{"https://instagram.com/maya"}, out)
}

func TestConfidence_SparsePage(t *testing.T) {
	profile := Derive(1, "ghost", &Snapshot{Title: "ghost | Stan Store"})
	require.NotEmpty(t, profile.ProfileName)
	// Name only: just the name weight.
	assert.InDelta(t, weightName, profile.Confidence, 1e-9)
}

func TestConfidence_BonusThresholds(t *testing.T) {
	base := model.StanProfile{Offers: []string{"a", "b"}, PricePoints: []float64{9}}
	withBonuses := model.StanProfile{Offers: []string{"a", "b", "c"}, PricePoints: []float64{9, 19}}

	assert.InDelta(t, bonusOffers+bonusPrices, confidence(withBonuses)-confidence(base), 1e-9)
}
