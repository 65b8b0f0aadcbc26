package utils_test

import (
	"testing"
	"time"

	"github.com/arbenl/ecohubkosova-sub002/internal/utils"
)

func TestListingCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	encoded, err := utils.EncodeListingCursor(createdAt, "l1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := utils.DecodeListingCursor(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.CreatedAt.Equal(createdAt) || decoded.ID != "l1" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestDecodeListingCursorRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not base64 at all!!", "bm90IGpzb24"} {
		if _, err := utils.DecodeListingCursor(raw); err == nil {
			t.Fatalf("cursor %q must not decode", raw)
		}
	}
}

func TestDecodeListingCursorRejectsIncompletePayload(t *testing.T) {
	encoded, err := utils.EncodeListingCursor(time.Time{}, "l1")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := utils.DecodeListingCursor(encoded); err == nil {
		t.Fatal("zero timestamp must not decode")
	}
}
