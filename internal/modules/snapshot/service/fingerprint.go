package snapshot

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	snapshotRepo "ramplog.app/backend/internal/modules/snapshot/repository"
)

// Signals are the change markers the fingerprint condenses. The struct is
// hashed field by field in declaration order; changing the order changes
// every token, which only forces one extra rebuild per client.
type Signals struct {
	Tricks              snapshotRepo.CatalogSignal
	Articles            snapshotRepo.CatalogSignal
	Products            snapshotRepo.CatalogSignal
	Parks               snapshotRepo.CatalogSignal
	Events              snapshotRepo.CatalogSignal
	ProgressUpdatedAt   time.Time
	RegistrationCount   int64
	FavoriteCount       int64
	ArticleReadCount    int64
	LastAchievementAt   time.Time
	UnreadNotifications int64
}

// Fingerprint condenses the signal set into an opaque per-user token.
// Equal tokens mean nothing relevant changed; an unrelated write may still
// produce a new token, which costs a rebuild but never staleness.
func Fingerprint(viewerID uuid.UUID, s Signals) string {
	h := xxhash.New()

	writeCatalog(h, s.Tricks)
	writeCatalog(h, s.Articles)
	writeCatalog(h, s.Products)
	writeCatalog(h, s.Parks)
	writeCatalog(h, s.Events)
	writeTime(h, s.ProgressUpdatedAt)
	writeInt(h, s.RegistrationCount)
	writeInt(h, s.FavoriteCount)
	writeInt(h, s.ArticleReadCount)
	writeTime(h, s.LastAchievementAt)
	writeInt(h, s.UnreadNotifications)

	// The viewer id keeps tokens from ever matching across users.
	_, _ = h.WriteString(viewerID.String())

	return fmt.Sprintf("%016x", h.Sum64())
}

// writeCatalog hashes both halves of a catalog signal. The count catches a
// hard delete of a non-newest row, which leaves the timestamp untouched.
func writeCatalog(h *xxhash.Digest, s snapshotRepo.CatalogSignal) {
	writeTime(h, s.UpdatedAt)
	writeInt(h, s.Count)
}

func writeTime(h *xxhash.Digest, t time.Time) {
	// "never" cannot collide with any UnixNano value, the epoch included.
	if t.IsZero() {
		_, _ = h.WriteString("never|")
		return
	}
	_, _ = h.WriteString(fmt.Sprintf("%d|", t.UnixNano()))
}

func writeInt(h *xxhash.Digest, n int64) {
	_, _ = h.WriteString(fmt.Sprintf("%d|", n))
}
