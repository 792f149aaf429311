package usecase

import (
	"fmt"
	"strings"

	"stock_ingest/internal/feature/ingest/domain/entity"
)

// Credential environment variable names.
const (
	EnvKISAppKey    = "KIS_APP_KEY"
	EnvKISAppSecret = "KIS_APP_SECRET"
	EnvKISAccountNo = "KIS_ACCOUNT_NO"
	EnvDARTAPIKey   = "DART_API_KEY"
)

// ConfigError reports a run that cannot proceed as configured. Missing lists
// the credential variables that must be exported, if any.
type ConfigError struct {
	Missing []string
	Message string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	var b strings.Builder
	b.WriteString("[SETUP REQUIRED] export the following variables in the local shell environment.\n")
	fmt.Fprintf(&b, "missing: %s\n\n", strings.Join(e.Missing, " "))
	b.WriteString("add them to ~/.bashrc or ~/.profile and source it:\n")
	for _, key := range e.Missing {
		fmt.Fprintf(&b, "  export %s=<YOUR_VALUE>\n", key)
	}
	b.WriteString("  source ~/.bashrc   # or source ~/.profile\n\n")
	b.WriteString("check the current session:\n")
	for _, key := range e.Missing {
		fmt.Fprintf(&b, "  printenv %s\n", key)
	}
	b.WriteString("\nthen run the same command again.")
	return b.String()
}

// Credentials records which provider secrets are present.
type Credentials struct {
	KISAppKey    string
	KISAppSecret string
	KISAccountNo string
	DARTAPIKey   string
}

// CheckCredentials returns a *ConfigError naming every credential cfg needs
// but creds lacks. Dry runs need none.
func CheckCredentials(cfg entity.RunConfig, creds Credentials) error {
	if cfg.DryRun {
		return nil
	}
	rt := cfg.RunType
	kisProfile := cfg.SourceProfile.IncludesKIS()
	needKIS := kisProfile && (rt.Includes(entity.CategoryPrices) ||
		rt.Includes(entity.CategoryFinancials) ||
		rt.Includes(entity.CategoryMargins))
	needAccount := kisProfile && rt.Includes(entity.CategoryMargins)
	needDART := cfg.Scope == entity.ScopeAll ||
		(rt.Includes(entity.CategoryEvents) && cfg.SourceProfile.IncludesDART())

	var missing []string
	if needKIS {
		if strings.TrimSpace(creds.KISAppKey) == "" {
			missing = append(missing, EnvKISAppKey)
		}
		if strings.TrimSpace(creds.KISAppSecret) == "" {
			missing = append(missing, EnvKISAppSecret)
		}
	}
	if needAccount && strings.TrimSpace(creds.KISAccountNo) == "" {
		missing = append(missing, EnvKISAccountNo)
	}
	if needDART && strings.TrimSpace(creds.DARTAPIKey) == "" {
		missing = append(missing, EnvDARTAPIKey)
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	return nil
}
