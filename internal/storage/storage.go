// Package storage hands out presigned upload URLs for todo attachments.
package storage

import (
	"context"
	"time"
)

// URLSigner presigns uploads into the attachments bucket. Objects are keyed
// by todo id; the service never reads or writes object bytes itself.
type URLSigner interface {
	PresignedUploadURL(ctx context.Context, key string, expires time.Duration) (string, error)
	// ObjectURL is the public location the object will have once uploaded.
	ObjectURL(key string) string
}
