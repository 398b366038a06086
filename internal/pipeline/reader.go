// Package pipeline drives one discovery run: walk listing pages,
// filter cards by recency, read profiles for unseen candidates, score
// them and reconcile everything into the stored table.
package pipeline

import (
	"context"

	"github.com/scoutline/scout-cli/internal/model"
)

// Card is one listing entry on a results page.
type Card struct {
	ID            string
	URL           string
	LastActiveRaw string
}

// ProfileReader abstracts the browser session. The pipeline never
// touches page internals; it sees cards and field probes only.
type ProfileReader interface {
	// Cards returns the listing entries on the current results page.
	Cards(ctx context.Context) ([]Card, error)

	// OpenCandidate navigates into a candidate's profile page.
	OpenCandidate(ctx context.Context, card Card) error

	// ReadProfile probes every field of the currently open profile.
	ReadProfile(ctx context.Context) (*model.RawProfile, error)

	// ReturnToListing navigates back to the results page.
	ReturnToListing(ctx context.Context) error

	// AdvancePage moves to the next results page. It returns false
	// when there is no further page.
	AdvancePage(ctx context.Context) (bool, error)
}
