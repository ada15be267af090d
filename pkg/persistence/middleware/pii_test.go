package middleware_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/stepwise/pkg/persistence/middleware"
)

func TestPIIMiddleware_Masking(t *testing.T) {
	underlyingStore := NewMockStore()
	// Mask e-mail addresses and long digit runs
	mw := middleware.NewPIIMiddleware([]string{`[\w.]+@[\w.]+`, `\d{3}-\d{2}-\d{4}`})
	secureStore := mw(underlyingStore)

	ctx := context.Background()
	original := []byte(`{"version":1,"stepGroups":[` +
		`{"id":"g1","title":"Mail","inputText":"contact jdoe@example.com now","steps":[]},` +
		`{"id":"g2","title":"Ids","inputText":"ssn 999-99-9999","steps":[]},` +
		`{"id":"g3","title":"Safe","inputText":"public","steps":[]}` +
		`],"librarySteps":[]}`)
	originalCopy := append([]byte(nil), original...)

	// 1. Set
	if err := secureStore.Set(ctx, "state", original); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Verify the caller's slice is NOT modified
	if string(original) != string(originalCopy) {
		t.Error("Middleware modified the caller's value!")
	}

	// 2. Read from the underlying store (should be masked)
	stored, err := underlyingStore.Get(ctx, "state")
	if err != nil {
		t.Fatalf("Underlying get failed: %v", err)
	}

	var envelope struct {
		StepGroups []struct {
			InputText string `json:"inputText"`
		} `json:"stepGroups"`
	}
	if err := json.Unmarshal(stored, &envelope); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}

	want := []string{"contact *** now", "ssn ***", "public"}
	for i, w := range want {
		if got := envelope.StepGroups[i].InputText; got != w {
			t.Errorf("group %d: expected %q, got %q", i, w, got)
		}
	}
}

func TestPIIMiddleware_PassesThroughNonEnvelope(t *testing.T) {
	underlyingStore := NewMockStore()
	secureStore := middleware.NewPIIMiddleware([]string{"secret"})(underlyingStore)

	if err := secureStore.Set(context.Background(), "raw", []byte("a secret blob")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	stored, _ := underlyingStore.Get(context.Background(), "raw")
	if string(stored) != "a secret blob" {
		t.Errorf("non-envelope value should pass through, got %q", stored)
	}
}
