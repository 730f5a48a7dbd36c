package app

import (
	"context"
	"io"
	"io/ioutil"
	"net/url"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/external"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/s3iface"
	"github.com/pkg/errors"
)

const s3LoadTimeout = time.Minute

type objectStore interface {
	getObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

type s3Store struct {
	client s3iface.ClientAPI
}

func (s s3Store) getObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}).Send(ctx)
	if err != nil {
		return nil, err
	}

	return resp.Body, nil
}

// S3Loader is a FileLoader that loads files from S3.
type S3Loader struct {
	store objectStore
}

func NewS3Loader(client s3iface.ClientAPI) *S3Loader {
	return &S3Loader{store: s3Store{client: client}}
}

// Load implements FileLoader.Load.
func (l S3Loader) Load(ctx context.Context, url *url.URL) ([]byte, error) {
	if url.Scheme != "s3" {
		return nil, errors.Errorf("invalid scheme: %s", url.Scheme)
	}
	if url.Host == "" {
		return nil, errors.New("missing bucket")
	}
	if len(url.Path) <= 1 {
		return nil, errors.New("missing key")
	}

	ctx, cancelFunc := context.WithTimeout(ctx, s3LoadTimeout)
	defer cancelFunc()

	// The path component of a URL includes the prefixed '/'.
	// However, despite S3 allowing URL's in raw APIs, it does _not_ expect
	// it in many SDKs.
	body, err := l.store.getObject(ctx, url.Host, url.Path[1:])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", url.String())
	}

	defer body.Close()
	return ioutil.ReadAll(body)
}

func init() {
	var init sync.Once

	var loader FileLoader
	var initErr error

	ctr := func() (FileLoader, error) {
		init.Do(func() {
			cfg, err := external.LoadDefaultAWSConfig()
			if err != nil {
				initErr = errors.Wrap(err, "failed to initialize S3Loader")
				return
			}

			loader = NewS3Loader(s3.New(cfg))
		})

		if initErr != nil {
			return nil, initErr
		}

		return loader, nil
	}

	RegisterFileLoader("s3", ctr)
}
