package filehandler

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"

	"github.com/fpang/media-picker/internal/media"
	"github.com/fpang/media-picker/internal/selection"
)

const s3Scheme = "s3://"

// HeadObjectAPI is the part of *s3.Client the resolver needs.
type HeadObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3Resolver resolves item IDs to objects in S3. An ID is either an
// s3://bucket/key URI or a bare key in the default bucket.
//
// It also classifies items by the object's Content-Type, falling back to
// the key's extension when the object has no useful type.
type S3Resolver struct {
	client HeadObjectAPI
	bucket string

	mu    sync.Mutex
	heads map[string]*s3.HeadObjectOutput
}

var _ selection.PathResolver = (*S3Resolver)(nil)

// NewS3Resolver returns a resolver over client. bucket is used for bare keys.
func NewS3Resolver(client HeadObjectAPI, bucket string) *S3Resolver {
	return &S3Resolver{
		client: client,
		bucket: bucket,
		heads:  make(map[string]*s3.HeadObjectOutput),
	}
}

// ResolvePath returns the object's s3:// URI if it exists.
func (r *S3Resolver) ResolvePath(ctx context.Context, id string) (string, bool) {
	bucket, key := r.split(id)
	if bucket == "" || key == "" {
		return "", false
	}
	if _, ok := r.head(ctx, bucket, key); !ok {
		return "", false
	}
	return s3Scheme + bucket + "/" + key, true
}

// MatchesType reports whether the object behind id is of type mt.
func (r *S3Resolver) MatchesType(ctx context.Context, id string, mt media.MimeType) bool {
	bucket, key := r.split(id)
	out, ok := r.head(ctx, bucket, key)
	if !ok {
		return false
	}
	if out.ContentType != nil {
		name, _, _ := strings.Cut(*out.ContentType, ";")
		if ct, err := media.Parse(name); err == nil {
			return ct == mt
		}
	}
	return mt.MatchesPath(key)
}

// ObjectID returns the canonical form of id: the bare key for objects in the
// default bucket and an s3://bucket/key URI otherwise. Two IDs naming the
// same object map to the same string.
func (r *S3Resolver) ObjectID(id string) string {
	bucket, key := r.split(id)
	if bucket == r.bucket {
		return key
	}
	return s3Scheme + bucket + "/" + key
}

// split turns an ID into bucket and key.
func (r *S3Resolver) split(id string) (string, string) {
	if rest, ok := strings.CutPrefix(id, s3Scheme); ok {
		bucket, key, _ := strings.Cut(rest, "/")
		return bucket, key
	}
	return r.bucket, strings.TrimPrefix(id, "/")
}

func (r *S3Resolver) head(ctx context.Context, bucket, key string) (*s3.HeadObjectOutput, bool) {
	cacheKey := bucket + "/" + key

	r.mu.Lock()
	out, ok := r.heads[cacheKey]
	r.mu.Unlock()
	if ok {
		return out, out != nil
	}

	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			log.Debug().Str("bucket", bucket).Str("key", key).Msg("S3 object not found")
		} else {
			log.Warn().Err(err).Str("bucket", bucket).Str("key", key).Msg("HeadObject failed, treating object as missing")
		}
		out = nil
	}

	r.mu.Lock()
	r.heads[cacheKey] = out
	r.mu.Unlock()
	return out, out != nil
}
