package service

import (
	"bytes"
	"claudecode-es/backend/pkg/util"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ObjectUploader is satisfied by *manager.Uploader
type ObjectUploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// EmailExporter dumps the users:emails set as CSV into a bucket
type EmailExporter struct {
	users    *UserManager
	uploader ObjectUploader
	bucket   string
	prefix   string
	clock    util.Clock
}

func NewEmailExporter(users *UserManager, uploader ObjectUploader, bucket, prefix string, clock util.Clock) *EmailExporter {
	if clock == nil {
		clock = util.RealClock{}
	}

	return &EmailExporter{
		users:    users,
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
		clock:    clock,
	}
}

func EncodeEmailsCSV(emails []string) ([]byte, error) {
	var buf bytes.Buffer

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"email"}); err != nil {
		return nil, err
	}

	for _, e := range emails {
		if err := w.Write([]string{e}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// Export uploads the current email list and returns the object key
func (e *EmailExporter) Export(ctx context.Context) (string, int, error) {
	emails, err := e.users.Emails(ctx)
	if err != nil {
		return "", 0, err
	}

	body, err := EncodeEmailsCSV(emails)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode email export, %w", err)
	}

	key := fmt.Sprintf("%susers-%s.csv", e.prefix, e.clock.Now().UTC().Format("20060102T150405Z"))

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	_, err = e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv; charset=utf-8"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload email export, %w", err)
	}

	return key, len(emails), nil
}

// Schedule runs Export on a cron spec. Stop the returned cron on shutdown.
func (e *EmailExporter) Schedule(spec string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(spec, func() {
		key, n, err := e.Export(context.Background())
		if err != nil {
			zap.L().Error("Scheduled email export failed", zap.Error(err))
			return
		}

		zap.L().Info("Email export uploaded", zap.String("key", key), zap.Int("count", n))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid export schedule %q, %w", spec, err)
	}

	c.Start()
	return c, nil
}
