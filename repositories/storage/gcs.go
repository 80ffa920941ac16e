package storage

import (
	"context"
	"fmt"
	"imputeqc/pipeline/utils"
	"io"
	"path"
	"sort"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/carbocation/pfx"
	"github.com/cenkalti/backoff"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
)

type GcsSource struct {
	Client     *gcs.Client
	Bucket     string
	Prefix     string
	Pattern    string
	MaxRetries uint64
}

func NewGcsSource(client *gcs.Client, location string, pattern string, maxRetries uint64) (*GcsSource, error) {
	bucket, prefix, err := splitGcsPath(location)
	if err != nil {
		return nil, err
	}

	// treat the prefix as a directory
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &GcsSource{
		Client:     client,
		Bucket:     bucket,
		Prefix:     prefix,
		Pattern:    pattern,
		MaxRetries: maxRetries,
	}, nil
}

func (s *GcsSource) Location() string {
	return gcsScheme + s.Bucket + "/" + s.Prefix
}

func (s *GcsSource) List(ctx context.Context) ([]string, error) {
	var names []string

	it := s.Client.Bucket(s.Bucket).Objects(ctx, &gcs.Query{Prefix: s.Prefix, Delimiter: "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, pfx.Err(err)
		}

		// "directories" come back as prefixes only
		if attrs.Name == "" {
			continue
		}

		matched, err := path.Match(s.Pattern, path.Base(attrs.Name))
		if err != nil {
			return nil, pfx.Err(err)
		}
		if matched {
			names = append(names, gcsScheme+s.Bucket+"/"+attrs.Name)
		}
	}
	sort.Strings(names)

	return names, nil
}

func (s *GcsSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, object, err := splitGcsPath(name)
	if err != nil {
		return nil, err
	}

	var reader *gcs.Reader
	operation := func() error {
		r, err := s.Client.Bucket(bucket).Object(object).NewReader(ctx)
		if err == gcs.ErrObjectNotExist || err == gcs.ErrBucketNotExist {
			return backoff.Permanent(err)
		}
		if err != nil {
			log.WithField("object", name).Warnf("Retrying open: %v", err)
			return err
		}
		reader = r
		return nil
	}

	if err := backoff.Retry(operation, utils.NewRetryBackOff(ctx, s.MaxRetries)); err != nil {
		return nil, pfx.Err(err)
	}

	return reader, nil
}

func splitGcsPath(location string) (bucket string, object string, err error) {
	if !strings.HasPrefix(location, gcsScheme) {
		return "", "", fmt.Errorf("%q is not a %s path", location, gcsScheme)
	}

	parts := strings.SplitN(strings.TrimPrefix(location, gcsScheme), "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("%q names no bucket", location)
	}
	if len(parts) == 2 {
		return parts[0], parts[1], nil
	}
	return parts[0], "", nil
}
