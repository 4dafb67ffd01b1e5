package semantic

import (
	"context"
	"testing"
	"time"
)

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{Model: "gpt-4o", APIKey: "test"})
	if c.maxAttempts != 3 {
		t.Errorf("maxAttempts: got %d, want 3", c.maxAttempts)
	}
	if c.backoff != 600*time.Millisecond {
		t.Errorf("backoff: got %v, want 600ms", c.backoff)
	}
	if c.model != "gpt-4o" {
		t.Errorf("model: got %q, want gpt-4o", c.model)
	}
}

func TestNewClientOverrides(t *testing.T) {
	c := NewClient(Config{MaxAttempts: 5, Backoff: 50 * time.Millisecond})
	if c.maxAttempts != 5 || c.backoff != 50*time.Millisecond {
		t.Errorf("overrides lost: attempts=%d backoff=%v", c.maxAttempts, c.backoff)
	}
}

func TestChatWithImageMissingFile(t *testing.T) {
	c := NewClient(Config{APIKey: "test"})
	if _, err := c.chatWithImage(context.Background(), "prompt", "/nonexistent/image.png"); err == nil {
		t.Error("missing image file should fail before any API call")
	}
}
