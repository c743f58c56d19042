// Package backup copies the encrypted vault blob to safer places: a
// timestamped local file, and optionally an S3-compatible bucket. Backups
// carry ciphertext only; no key material is ever written.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/akovardin/securepass/internal/common"
	"github.com/akovardin/securepass/internal/config"
	"github.com/akovardin/securepass/internal/filex"
	"github.com/akovardin/securepass/internal/logging"
	"github.com/akovardin/securepass/internal/repositories/vaults"
)

// Test seams for the AWS SDK.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
)

// Service performs vault backups.
type Service struct {
	repo  vaults.Repository
	cfg   *config.Config
	log   logging.Logger
	nowFn func() time.Time
}

// NewService constructs a backup Service over the vault repository.
func NewService(repo vaults.Repository, cfg *config.Config, log logging.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log, nowFn: time.Now}
}

func (s *Service) stamp() string {
	return s.nowFn().Format("20060102_150405")
}

// Local writes a timestamped copy of the owner's vault blob into the
// backups directory and returns its path.
func (s *Service) Local(ctx context.Context, owner string) (string, error) {
	blob, err := s.repo.Load(ctx, owner)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(s.cfg.DataDir, "backups")
	if err := filex.EnsureDir(dir); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("passwords_backup_%s.dat", s.stamp()))
	if err := filex.WriteAtomic(path, blob, 0o600); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}

	s.log.Info(ctx, "local backup written", "path", path)
	return path, nil
}

// Remote uploads the owner's vault blob to the configured bucket and
// returns the object key. Fails when no bucket is configured.
func (s *Service) Remote(ctx context.Context, owner string) (string, error) {
	if s.cfg.S3Bucket == "" {
		return "", fmt.Errorf("%w: no backup bucket configured", common.ErrStorageIO)
	}

	blob, err := s.repo.Load(ctx, owner)
	if err != nil {
		return "", err
	}

	client, err := s.getClient(ctx)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("backups/%s/%s.dat", owner, s.stamp())
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.S3Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(blob),
	})
	if err != nil {
		return "", fmt.Errorf("%w: upload backup: %v", common.ErrStorageIO, err)
	}

	s.log.Info(ctx, "remote backup uploaded", "bucket", s.cfg.S3Bucket, "key", key)
	return key, nil
}

func (s *Service) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(s.cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.cfg.S3RootUser,
			s.cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.cfg.S3BaseEndpoint)
	})
	return client, nil
}
