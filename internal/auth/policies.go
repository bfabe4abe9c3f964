package auth

import (
	"fmt"
	"go-elearn-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

// DefaultPolicies grant administrators the course management area and the
// dashboard. Regular users have no policy, so every admin route denies them.
var DefaultPolicies = [][]string{
	{"admin", "/admin/*", "^(GET|POST)$"},
	{"admin", "/admin-dashboard/", "^GET$"},
}

// SeedDefaultPolicies ensures that the application has a baseline set of authorization rules.
// It checks if each default policy exists before adding it, making the operation idempotent
// and safe to run on every application start.
func SeedDefaultPolicies(e casbin.IEnforcer, log logger.Logger) {
	log.Info("Seeding default authorization policies...")
	for _, p := range DefaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}
	log.Info("Policy seeding complete.")
}
