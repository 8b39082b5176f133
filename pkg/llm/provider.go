// Package llm provides abstractions for LLM provider integration.
//
// Example usage:
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//	    "os"
//
//	    "github.com/entrhq/recall/pkg/llm/openai"
//	    "github.com/entrhq/recall/pkg/types"
//	)
//
//	func main() {
//	    provider, err := openai.NewProvider(
//	        os.Getenv("OPENAI_API_KEY"),
//	        openai.WithModel("gpt-4o-mini"),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    msg, err := provider.Complete(context.Background(), []*types.Message{
//	        types.NewUserMessage("Hello!"),
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(msg.Content)
//	}
package llm

import (
	"context"

	"github.com/entrhq/recall/pkg/types"
)

// ModelCloner is an optional interface that LLM providers can implement to
// support lightweight per-call model overrides without constructing a full
// second provider. The returned provider shares credentials and transport with
// the original but directs calls to the given model.
//
// The naming and summary pipelines rely on this to run their requests on
// dedicated models while reusing the host's provider configuration.
type ModelCloner interface {
	CloneWithModel(model string) Provider
}

// Provider defines the interface for LLM integrations.
//
// Providers handle API communication with LLM services and nothing else.
// Orchestration concerns (which documents feed a request, what happens to
// the response, retry policy) live in the pipeline layer. This separation
// keeps providers reusable in non-pipeline contexts and testable
// independently of pipeline logic.
type Provider interface {
	// Complete sends messages to the LLM and returns the full response.
	//
	// Returns the assistant's response message, or an error if the request
	// could not be completed. Errors carry the upstream status information
	// when the failure came from the remote API.
	Complete(ctx context.Context, messages []*types.Message) (*types.Message, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
