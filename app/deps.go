package app

import (
	"claudecode-es/backend/aws"
	"claudecode-es/backend/config"
	"claudecode-es/backend/db"
	"claudecode-es/backend/internal"
	"claudecode-es/backend/internal/access"
	"claudecode-es/backend/internal/service"
	"claudecode-es/backend/internal/store"
	"claudecode-es/backend/pkg/middleware"
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// NewDeps builds every dependency from the loaded config. The returned
// function closes the store and the database.
func NewDeps(ctx context.Context) (*internal.Deps, func(), error) {
	d := &internal.Deps{
		BaseURL:       strings.TrimSuffix(viper.GetString("host.base_url"), "/"),
		SecureCookies: config.Production(),
	}

	s, err := newStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	d.Store = s

	conn, err := db.New(viper.GetString("db.type"), viper.GetString("db.path"), viper.GetString("db.dsn"))
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	d.DB = conn

	closer := func() {
		if err := s.Close(); err != nil {
			zap.L().Warn("Failed to close store", zap.Error(err))
		}

		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	}

	d.Issuer = service.NewMagicLinkIssuer(s, nil, viper.GetDuration("auth.magic_link_ttl"), viper.GetString("auth.default_redirect"))
	d.Limiter = service.NewRateLimiter(s, viper.GetInt("auth.rate_limit.max"), viper.GetDuration("auth.rate_limit.window"))
	d.Sessions = service.NewSessionManager(s, viper.GetDuration("auth.session_ttl"))
	d.Users = service.NewUserManager(s, nil)
	d.Purchases = service.NewPurchases(s, viper.GetStringSlice("access.products"))
	d.Licenses = service.NewLicenseValidator(
		viper.GetString("license.verify_url"),
		viper.GetString("license.product_id"),
		viper.GetDuration("license.timeout"),
	)
	d.LoginHistory = service.NewLoginHistory(conn, nil)
	d.Leads = service.NewLeads(conn, nil)

	if viper.GetBool("mail.enabled") {
		d.Mailer = service.NewSMTPMailer(service.SMTPConfig{
			Host:          viper.GetString("mail.host"),
			Port:          viper.GetInt("mail.port"),
			Username:      viper.GetString("mail.username"),
			Password:      viper.GetString("mail.password"),
			SenderAddress: viper.GetString("mail.sender_address"),
		})
	} else {
		d.Mailer = service.LogMailer{}
	}

	d.Whitelist = access.NewWhitelist(viper.GetStringSlice("access.whitelist"))
	zap.L().Debug("Whitelist loaded", zap.Int("entries", d.Whitelist.Len()))

	bundles, err := config.Bundles()
	if err != nil {
		closer()
		return nil, nil, err
	}

	d.Gates, err = access.NewEvaluator(bundles, access.Deps{
		Whitelist: d.Whitelist,
		Purchases: d.Purchases,
		Licenses:  d.Licenses,
	})
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("invalid access configuration, %w", err)
	}

	if viper.GetBool("export.enabled") || config.ExportOnly() {
		s3, err := aws.NewS3(ctx, aws.S3Options{
			AccessKeyID:     viper.GetString("export.access_key_id"),
			SecretAccessKey: viper.GetString("export.secret_access_key"),
			Region:          viper.GetString("export.region"),
			Bucket:          viper.GetString("export.bucket"),
			Endpoint:        viper.GetString("export.endpoint"),
		})
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		d.Exporter = service.NewEmailExporter(d.Users, s3.Uploader, *s3.Bucket, viper.GetString("export.prefix"), nil)
	}

	return d, closer, nil
}

func newStore(ctx context.Context) (store.Store, error) {
	switch viper.GetString("store.type") {
	case "redis":
		s, err := store.NewRedis(ctx, &redis.Options{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis, %w", err)
		}

		return s, nil
	default:
		return store.NewMemory(nil), nil
	}
}

// Options reads the HTTP options from the loaded config
func Options() RouterOptions {
	return RouterOptions{
		CORSOrigins: viper.GetStringSlice("host.cors"),
		RateLimit:   viper.GetInt("security.rate_limit"),
		Turnstile: middleware.TurnstileConfig{
			Enabled: viper.GetBool("turnstile.enabled"),
			Secret:  viper.GetString("turnstile.secret_token"),
		},
	}
}
