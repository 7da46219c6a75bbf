// Package archive uploads stored run payloads to S3 for long-term
// retention. The service is only constructed when a bucket is configured;
// everything else in the application treats it as optional.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/salescast/internal/events"
	"github.com/aristath/salescast/internal/modules/runs"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Config holds S3 connection settings. Endpoint and the static key pair
// are optional; when the keys are empty the default AWS credential chain
// applies.
type Config struct {
	Bucket    string
	Region    string
	Prefix    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Location identifies an uploaded object.
type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// Service uploads run payloads and records the upload in the run store.
type Service struct {
	uploader *manager.Uploader
	store    *runs.Store
	bus      *events.Bus
	bucket   string
	prefix   string
	log      zerolog.Logger
}

// NewService builds the S3 client and uploader.
func NewService(ctx context.Context, cfg Config, store *runs.Store, bus *events.Bus, log zerolog.Logger) (*Service, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Custom endpoints (MinIO and friends) need path-style addressing.
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Service{
		uploader: manager.NewUploader(client),
		store:    store,
		bus:      bus,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		log:      log.With().Str("component", "archive").Logger(),
	}, nil
}

// ArchiveRun uploads one run's payload and marks the run archived.
func (s *Service) ArchiveRun(ctx context.Context, id string) (*Location, error) {
	blob, err := s.store.GetPayload(ctx, id)
	if err != nil {
		return nil, err
	}
	if blob == nil {
		return nil, fmt.Errorf("run %s has no stored payload", id)
	}

	key := s.objectKey(id)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(blob),
		ContentType: aws.String("application/msgpack"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload run %s: %w", id, err)
	}

	if err := s.store.MarkArchived(ctx, id, time.Now()); err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Emit("archive", events.RunArchivedData{RunID: id, Bucket: s.bucket, Key: key})
	}

	s.log.Info().Str("run_id", id).Str("key", key).Int("bytes", len(blob)).Msg("Run archived")
	return &Location{Bucket: s.bucket, Key: key}, nil
}

// SweepExpired uploads every unarchived run older than maxAge. Called by
// the scheduler ahead of retention cleanup so payloads survive deletion.
// Returns how many runs were archived; the error reports the first upload
// failure after finishing the remainder.
func (s *Service) SweepExpired(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	pending, err := s.store.ListUnarchivedOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	archived := 0
	var firstErr error
	for _, run := range pending {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.ArchiveRun(ctx, run.ID); err != nil {
			s.log.Error().Err(err).Str("run_id", run.ID).Msg("Sweep failed to archive run")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		archived++
	}
	return archived, firstErr
}

func (s *Service) objectKey(id string) string {
	if s.prefix == "" {
		return fmt.Sprintf("runs/%s.msgpack", id)
	}
	return fmt.Sprintf("%s/runs/%s.msgpack", s.prefix, id)
}
