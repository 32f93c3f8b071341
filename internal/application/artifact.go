package application

import (
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"

	"github.com/aerosimlabs/simgate/config"
	"github.com/aerosimlabs/simgate/pkg/helpers"
)

// ArtifactResolver hands out the download location and decryption key for
// the encrypted simulator build after a successful login.
//
// The key is process-wide, not per session or per license: every
// authenticated client receives the same material. Scoping it tighter is a
// product decision; the derivation is isolated here so it can change without
// touching the login workflow.
type ArtifactResolver struct {
	Cfg    *config.Config
	GCS    *storage.Client // optional; enables signed URLs
	Logger *logrus.Logger
}

func NewArtifactResolver(cfg *config.Config, gcs *storage.Client, logger *logrus.Logger) *ArtifactResolver {
	return &ArtifactResolver{Cfg: cfg, GCS: gcs, Logger: logger}
}

// URL resolves the externally reachable artifact URL. Preference order:
// explicit SIMULATOR_URL, a V4 signed GCS URL when a bucket is configured,
// then a fallback built from the inbound request. The fallback guesses
// wrong behind reverse proxies; set SIMULATOR_URL in such deployments.
func (r *ArtifactResolver) URL(req *http.Request) string {
	if r.Cfg.SimulatorURL != "" {
		return r.Cfg.SimulatorURL
	}
	if r.GCS != nil && r.Cfg.GCSBucket != "" {
		u, err := helpers.SignedArtifactURL(r.GCS, r.Cfg.GCSBucket, r.Cfg.ArtifactPath, r.Cfg.SignedURLTTL)
		if err == nil {
			return u
		}
		r.Logger.WithError(err).Warn("signed artifact url failed, falling back to request host")
	}
	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/files/%s", scheme, req.Host, r.Cfg.ArtifactPath)
}

// KeyHex returns the distributable decryption key in hex, or "" when no key
// is configured or it fails to decode. A decode failure is logged and the
// login response simply omits the key.
func (r *ArtifactResolver) KeyHex() string {
	if r.Cfg.AESKeyB64 == "" {
		return ""
	}
	k, err := helpers.Base64ToHex(r.Cfg.AESKeyB64)
	if err != nil {
		r.Logger.WithError(err).Error("failed to convert AES_KEY_B64 to hex")
		return ""
	}
	return k
}
