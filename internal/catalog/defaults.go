package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/loyaltyhub/backend/internal/models"
)

// Built-in catalogs for projects that have not configured their own
// activities or rewards. Slots and point values are a platform contract:
// the same slot always resolves to the same definition for a given project.

type defaultActivity struct {
	Name    string
	Points  int
	Cadence string
}

type defaultReward struct {
	Name   string
	Points int
}

var defaultActivities = map[string]defaultActivity{
	"daily-checkin":        {Name: "Daily Check-in", Points: 10, Cadence: models.CadenceDaily},
	"share-social":         {Name: "Share on Social Media", Points: 15, Cadence: models.CadenceOneShot},
	"complete-profile":     {Name: "Complete Your Profile", Points: 20, Cadence: models.CadenceOneShot},
	"first-purchase":       {Name: "First Purchase", Points: 50, Cadence: models.CadenceOneShot},
	"review-product":       {Name: "Write a Product Review", Points: 25, Cadence: models.CadenceOneShot},
	"refer-friend":         {Name: "Refer a Friend", Points: 30, Cadence: models.CadenceOneShot},
	"watch-video":          {Name: "Watch the Tutorial Video", Points: 12, Cadence: models.CadenceOneShot},
	"join-community":       {Name: "Join the Community", Points: 18, Cadence: models.CadenceOneShot},
	"feedback-survey":      {Name: "Fill Out the Feedback Survey", Points: 22, Cadence: models.CadenceOneShot},
	"newsletter-subscribe": {Name: "Subscribe to the Newsletter", Points: 8, Cadence: models.CadenceOneShot},
	"app-download":         {Name: "Download the Mobile App", Points: 35, Cadence: models.CadenceOneShot},
	"birthday-bonus":       {Name: "Birthday Bonus", Points: 100, Cadence: models.CadenceOneShot},
}

var defaultRewards = map[string]defaultReward{
	"coffee-voucher":  {Name: "Free Coffee Voucher", Points: 50},
	"discount-10":     {Name: "10% Discount Coupon", Points: 30},
	"free-shipping":   {Name: "Free Shipping Coupon", Points: 25},
	"premium-upgrade": {Name: "Premium Membership Upgrade", Points: 100},
	"gift-card-100":   {Name: "$100 Gift Card", Points: 200},
	"exclusive-merch": {Name: "Limited Edition Merch", Points: 150},
}

// VirtualID is the deterministic id of a built-in catalog slot for a
// project: the first group of the project UUID joined to the slot name.
// Pure function, so any caller reproduces identical ids without persistence.
func VirtualID(projectID uuid.UUID, slot string) string {
	prefix, _, _ := strings.Cut(projectID.String(), "-")
	return prefix + "-" + slot
}

// slotFromID maps an incoming non-UUID item id to a built-in slot name.
// Accepts the bare slot ("daily-checkin") or the prefixed virtual form
// ("a1b2c3d4-daily-checkin"). Returns "" when no built-in slot matches.
func slotFromID(id string, known func(slot string) bool) string {
	if known(id) {
		return id
	}
	if _, rest, ok := strings.Cut(id, "-"); ok && known(rest) {
		return rest
	}
	return ""
}

func isActivitySlot(slot string) bool { _, ok := defaultActivities[slot]; return ok }
func isRewardSlot(slot string) bool   { _, ok := defaultRewards[slot]; return ok }

func builtinActivity(projectID uuid.UUID, slot string) *models.ActivityDefinition {
	d, ok := defaultActivities[slot]
	if !ok {
		return nil
	}
	return &models.ActivityDefinition{
		ID:        VirtualID(projectID, slot),
		ProjectID: projectID,
		Name:      d.Name,
		Points:    d.Points,
		Cadence:   d.Cadence,
		IsActive:  true,
		Virtual:   true,
	}
}

func builtinReward(projectID uuid.UUID, slot string) *models.RewardDefinition {
	d, ok := defaultRewards[slot]
	if !ok {
		return nil
	}
	// Built-in rewards carry no stock row; stock is untracked.
	return &models.RewardDefinition{
		ID:             VirtualID(projectID, slot),
		ProjectID:      projectID,
		Name:           d.Name,
		PointsRequired: d.Points,
		IsActive:       true,
		Virtual:        true,
	}
}

// AffordableBuiltinRewards counts built-in rewards a balance can pay for.
func AffordableBuiltinRewards(balance int) int {
	n := 0
	for _, d := range defaultRewards {
		if d.Points <= balance {
			n++
		}
	}
	return n
}
