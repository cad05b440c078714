package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case SecretsResult:
		o.printSecrets(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username,omitempty"`
	Providers []string  `json:"providers,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// SecretsResult holds a list of secrets
type SecretsResult struct {
	Secrets []string `json:"secrets"`
}

// HealthResult is the health check response
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("ID:       %s\n", u.ID)
	if u.Username != "" {
		fmt.Printf("Username: %s\n", u.Username)
	}
	if len(u.Providers) > 0 {
		fmt.Printf("Linked:   %s\n", strings.Join(u.Providers, ", "))
	}
	fmt.Printf("Created:  %s\n", u.CreatedAt.Format(time.RFC3339))
}

func (o *Output) printAuthResult(r AuthResult) {
	o.printUser(r.User)
	fmt.Printf("Token:    %s\n", r.SessionToken)
}

func (o *Output) printSecrets(r SecretsResult) {
	if len(r.Secrets) == 0 {
		fmt.Println("No secrets yet.")
		return
	}
	for _, secret := range r.Secrets {
		fmt.Printf("- %s\n", secret)
	}
}

func (o *Output) printHealthResult(r HealthResult) {
	fmt.Printf("Status: %s\n", r.Status)
}
