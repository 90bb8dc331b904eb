// Package source opens the byte streams the tlv tools decode: standard
// input, local files, S3 objects and http(s) URLs.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/epithet-ssh/tlv/pkg/tlsconfig"
)

// Stdin is the name that selects standard input.
const Stdin = "-"

const s3Scheme = "s3://"

// ObjectGetter is the part of the S3 client used to read objects.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Opener resolves input names to readers.
//
//	"-"                  standard input
//	"s3://bucket/key"    an S3 object
//	"https://..."        a GET request; http:// needs TLS.Insecure
//	anything else        a local file
type Opener struct {
	// S3 is used for s3:// names. When nil a client is built from the
	// default AWS configuration on first use.
	S3 ObjectGetter

	// HTTP is used for http(s):// names. When nil a client is built from
	// TLS on first use.
	HTTP *http.Client
	TLS  tlsconfig.Config

	Stdin  io.Reader
	Logger *slog.Logger

	s3Once   sync.Once
	s3Err    error
	httpOnce sync.Once
	httpErr  error
}

// Open returns a reader for name. The caller must close it.
func (o *Opener) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	switch {
	case name == "" || name == Stdin:
		in := o.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil
	case strings.HasPrefix(name, s3Scheme):
		return o.openS3(ctx, name)
	case strings.HasPrefix(name, "https://"), strings.HasPrefix(name, "http://"):
		return o.openHTTP(ctx, name)
	default:
		f, err := os.Open(name)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		return f, nil
	}
}

// ParseS3 splits an s3://bucket/key name.
func ParseS3(name string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(name, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %q", name)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("s3 location must be s3://bucket/key, got %q", name)
	}
	return bucket, key, nil
}

func (o *Opener) openS3(ctx context.Context, name string) (io.ReadCloser, error) {
	bucket, key, err := ParseS3(name)
	if err != nil {
		return nil, err
	}

	client, err := o.s3Client(ctx)
	if err != nil {
		return nil, err
	}

	o.logger().Debug("fetching s3 object", slog.String("bucket", bucket), slog.String("key", key))

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read from S3: %w", err)
	}
	if out.ContentLength != nil {
		o.logger().Debug("s3 object opened", slog.String("key", key), slog.Int64("size", *out.ContentLength))
	}
	return out.Body, nil
}

func (o *Opener) s3Client(ctx context.Context) (ObjectGetter, error) {
	o.s3Once.Do(func() {
		if o.S3 != nil {
			return
		}
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			o.s3Err = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}
		o.S3 = s3.NewFromConfig(cfg)
	})
	return o.S3, o.s3Err
}

func (o *Opener) openHTTP(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := o.TLS.ValidateURL(url); err != nil {
		return nil, err
	}

	o.httpOnce.Do(func() {
		if o.HTTP == nil {
			o.HTTP, o.httpErr = tlsconfig.NewHTTPClient(o.TLS)
		}
	})
	if o.httpErr != nil {
		return nil, o.httpErr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid input URL: %w", err)
	}

	o.logger().Debug("fetching input", slog.String("url", url))

	resp, err := o.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch input: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch input: %s returned %s", url, resp.Status)
	}
	return resp.Body, nil
}

func (o *Opener) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}
