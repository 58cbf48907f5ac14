package source

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fxpulse/fxpulse/errclass"
)

func TestHTTPClient_FetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("pair"); got != "USD/EUR" {
			t.Errorf("expected pair query parameter, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rate": 0.92, "derived_rate": 1.0869, "source": "ecb"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "USD/EUR", srv.Client())
	v, err := c.Fetch(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Primary != 0.92 || v.Derived != 1.0869 {
		t.Fatalf("unexpected rates %+v", v)
	}
	if v.Source != "ecb" {
		t.Fatalf("expected the upstream-declared source, got %q", v.Source)
	}
	if v.Timestamp.IsZero() {
		t.Fatal("expected a fetch timestamp")
	}
}

func TestHTTPClient_DerivesInverseWhenAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rate": 2.0}`))
	}))
	defer srv.Close()

	v, err := NewHTTPClient(srv.URL, "USD/EUR", srv.Client()).Fetch(t.Context())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Derived != 0.5 {
		t.Fatalf("expected the inverse rate, got %v", v.Derived)
	}
}

func TestHTTPClient_NonSuccessStatusIsApi(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "USD/EUR", srv.Client()).Fetch(t.Context())
	var ce *errclass.Error
	if !errors.As(err, &ce) || ce.Kind != errclass.Api {
		t.Fatalf("expected an Api-kind error, got %v", err)
	}
	if ce.Details["status"] != http.StatusBadGateway {
		t.Fatalf("expected the status code in details, got %v", ce.Details)
	}
}

func TestHTTPClient_MalformedBodyIsParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rate": `))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "USD/EUR", srv.Client()).Fetch(t.Context())
	var ce *errclass.Error
	if !errors.As(err, &ce) || ce.Kind != errclass.Parsing {
		t.Fatalf("expected a Parsing-kind error, got %v", err)
	}
}

func TestHTTPClient_MissingRateIsParsing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"source": "ecb"}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, "USD/EUR", srv.Client()).Fetch(t.Context())
	var ce *errclass.Error
	if !errors.As(err, &ce) || ce.Kind != errclass.Parsing {
		t.Fatalf("expected a Parsing-kind error, got %v", err)
	}
}

func TestHTTPClient_TransportFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // refuse connections

	_, err := NewHTTPClient(srv.URL, "USD/EUR", nil).Fetch(t.Context())
	var ce *errclass.Error
	if !errors.As(err, &ce) || ce.Kind != errclass.Network {
		t.Fatalf("expected a Network-kind error, got %v", err)
	}
}
