package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/petpix/internal/core/label"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration,
// reporting every failing field instead of stopping at the first one. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check).
func (c *Config) ValidateDeep(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("api_base", c.APIBase, requiredServiceURL),
		criterio.Run("default_label", c.DefaultLabel, validLabel),
		criterio.Run("user_agent", c.UserAgent, printable),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if u, err := url.Parse(c.APIBase); err == nil && u.Scheme == "http" && !isLocal(u.Hostname()) {
		warnings = append(warnings, ValidationWarning{
			Field:   "api_base",
			Message: "uses plain http; uploads are sent unencrypted",
		})
	}

	if u, err := url.Parse(c.APIBase); err == nil && u.RawQuery != "" {
		warnings = append(warnings, ValidationWarning{
			Field:   "api_base",
			Message: "query string is replaced on every request",
		})
	}

	return warnings
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func requiredServiceURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("is required")
	}
	return serviceURL(s)
}

func validLabel(s string) error {
	_, err := label.Parse(s)
	return err
}

func printable(s string) error {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("contains control characters")
		}
	}
	return nil
}

func isLocal(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
