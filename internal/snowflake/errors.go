package snowflake

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds produced by the client. Handlers check these with
// errors.Is() and translate them to display text at the MCP boundary;
// nothing in this package formats user-facing messages.
var (
	// ErrConnection covers failures to reach or talk to Snowflake.
	ErrConnection = errors.New("connection error")

	// ErrAuthentication covers rejected credentials.
	ErrAuthentication = errors.New("authentication error")

	// ErrQuery covers statement execution failures.
	ErrQuery = errors.New("query error")

	// ErrConfiguration covers invalid connection configuration.
	ErrConfiguration = errors.New("configuration error")

	// Cortex-specific kinds.
	ErrCortexComplete    = errors.New("cortex complete error")
	ErrCortexSearch      = errors.New("cortex search error")
	ErrCortexAnalyst     = errors.New("cortex analyst error")
	ErrModelNotSupported = errors.New("cortex model not supported")
)

// Models supported by Cortex Complete.
var Models = []string{
	"snowflake-llama-3.3-70b",
	"snowflake-llama-3.1-8b",
	"snowflake-llama-3.1-70b",
}

// DefaultModel is used when neither the caller nor the service registry
// names a model.
const DefaultModel = "snowflake-llama-3.3-70b"

// ValidateModel checks that model is one of the supported Cortex
// Complete models. Runs before any SQL is built so an unsupported model
// never reaches the warehouse.
func ValidateModel(model string) error {
	for _, m := range Models {
		if model == m {
			return nil
		}
	}
	return fmt.Errorf("%w: model %q is not supported (valid models: %s)",
		ErrModelNotSupported, model, strings.Join(Models, ", "))
}
