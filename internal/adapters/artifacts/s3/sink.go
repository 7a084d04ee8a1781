// Package s3 uploads raw envelopes to an S3 bucket.
package s3

import (
	"bytes"
	"context"
	"path"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/olusolaa/oneroster-parity/internal/adapters/artifacts/file"
	"github.com/olusolaa/oneroster-parity/internal/core/ports"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

// PutObjectAPI is the subset of the S3 client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// CallerIdentityAPI is the STS call used to check credentials before a run.
type CallerIdentityAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type Config struct {
	Bucket string `mapstructure:"bucket" validate:"required"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

type Sink struct {
	cfg       Config
	client    PutObjectAPI
	sts       CallerIdentityAPI
	accountID string
	accMu     sync.RWMutex
	logger    ports.Logger
}

var _ ports.ArtifactSink = (*Sink)(nil)

// Option configures a Sink.
type Option func(*Sink)

func WithClient(client PutObjectAPI) Option {
	return func(s *Sink) {
		if client != nil {
			s.client = client
		}
	}
}

func WithSTSClient(client CallerIdentityAPI) Option {
	return func(s *Sink) {
		if client != nil {
			s.sts = client
		}
	}
}

// New loads the default AWS configuration unless both clients are supplied
// through options.
func New(ctx context.Context, cfg Config, logger ports.Logger, opts ...Option) (*Sink, error) {
	s := &Sink{cfg: cfg, logger: logger.WithFields(map[string]any{"component": "artifacts"})}
	for _, opt := range opts {
		opt(s)
	}
	if s.client != nil && s.sts != nil {
		return s, nil
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.WrapUserFacing(err, errors.CodeConfigValidation, "failed to load AWS configuration",
			"Configure AWS credentials or switch artifacts.type to file.")
	}
	if s.client == nil {
		s.client = s3.NewFromConfig(awsCfg)
	}
	if s.sts == nil {
		s.sts = sts.NewFromConfig(awsCfg)
	}
	return s, nil
}

// Verify checks that the configured credentials resolve to an account.
func (s *Sink) Verify(ctx context.Context) error {
	s.accMu.RLock()
	known := s.accountID != ""
	s.accMu.RUnlock()
	if known {
		return nil
	}

	out, err := s.sts.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return HandleError(ctx, "sts:GetCallerIdentity", s.cfg.Bucket, err)
	}

	s.accMu.Lock()
	s.accountID = aws.ToString(out.Account)
	s.accMu.Unlock()
	s.logger.Debugf(ctx, "Uploading artifacts to s3://%s as account %s", s.cfg.Bucket, s.AccountID())
	return nil
}

func (s *Sink) AccountID() string {
	s.accMu.RLock()
	defer s.accMu.RUnlock()
	return s.accountID
}

// Key is the object key for an artifact name.
func (s *Sink) Key(name string) string {
	if s.cfg.Prefix == "" {
		return name
	}
	return path.Join(s.cfg.Prefix, name)
}

func (s *Sink) Save(ctx context.Context, name string, payload []byte) error {
	key := s.Key(name)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Indent(payload)),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return HandleError(ctx, "s3:PutObject", s.cfg.Bucket+"/"+key, err)
	}
	s.logger.Debugf(ctx, "Uploaded artifact s3://%s/%s", s.cfg.Bucket, key)
	return nil
}
