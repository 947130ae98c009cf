package csv

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"olympus.io/loot-of-olympus/internal/ledger"
	"olympus.io/loot-of-olympus/pkg/common"
	"olympus.io/loot-of-olympus/pkg/errors"
	"olympus.io/loot-of-olympus/pkg/log"
)

const contentType = "text/csv"

var header = []string{"rank", "username", "claimed_at"}

const defaultLinkTTL = time.Hour

// ObjectStore is implemented by the s3 client.
type ObjectStore interface {
	PutFile(ctx context.Context, key, contentType string, file io.Reader) error
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

// Export describes one uploaded claimant csv.
type Export struct {
	Key  string `json:"key"`
	URL  string `json:"url,omitempty"`
	Rows int    `json:"rows"`
}

// ClaimantExporter writes an item's claimant ledger as csv and uploads it.
type ClaimantExporter struct {
	store   ObjectStore
	prefix  string
	linkTTL time.Duration
	now     func() time.Time
}

func NewClaimantExporter(store ObjectStore, prefix string) *ClaimantExporter {
	return &ClaimantExporter{store: store, prefix: prefix, linkTTL: defaultLinkTTL, now: time.Now}
}

// Export uploads the claimants of postID. A failed presign leaves URL empty, the
// object is uploaded either way.
func (in *ClaimantExporter) Export(ctx context.Context, postID string, claimants []ledger.Claimant) (*Export, error) {
	body, err := Encode(claimants)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%v%v/%v-%v.csv", in.prefix, postID,
		in.now().UTC().Format("20060102T150405"), common.NewCutUUIDString()[:8])
	if err := in.store.PutFile(ctx, key, contentType, bytes.NewReader(body)); err != nil {
		return nil, errors.WithMessage(err, "upload claimant csv")
	}
	exp := &Export{Key: key, Rows: len(claimants)}
	if exp.URL, err = in.store.PresignGet(ctx, key, in.linkTTL); err != nil {
		log.Warnf("presign claimant csv %v:%v", key, err)
	}
	return exp, nil
}

// Encode renders claimants in ledger order, ranks start at 1.
func Encode(claimants []ledger.Claimant) ([]byte, error) {
	records := make([][]string, 0, len(claimants)+1)
	records = append(records, header)
	for i, c := range claimants {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			c.Username,
			c.ClaimedAt.UTC().Format(time.RFC3339Nano),
		})
	}
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, errors.Wrap(err, "write claimant csv")
	}
	return buf.Bytes(), nil
}
