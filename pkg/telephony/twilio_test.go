package telephony

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testConfig(baseURL string) Config {
	return Config{
		AccountSID: "AC123",
		AuthToken:  "secret",
		FromNumber: "+15550100",
		BaseURL:    baseURL,
	}
}

func TestPlaceCall(t *testing.T) {
	t.Parallel()

	var gotPath, gotTo, gotURL string
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, pass, ok := r.BasicAuth()
		gotAuth = ok && pass == "secret"
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotTo = r.PostFormValue("To")
		gotURL = r.PostFormValue("Url")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA42","status":"queued"}`))
	}))
	defer srv.Close()

	client := MustNew(testConfig(srv.URL))
	sid, err := client.PlaceCall(context.Background(), "+919999999999", "https://example.com/calls/start")
	if err != nil {
		t.Fatal(err)
	}
	if sid != "CA42" {
		t.Fatalf("sid = %q", sid)
	}
	if gotPath != "/2010-04-01/Accounts/AC123/Calls.json" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotTo != "+919999999999" || gotURL != "https://example.com/calls/start" {
		t.Fatalf("form: to=%q url=%q", gotTo, gotURL)
	}
	if !gotAuth {
		t.Fatal("basic auth missing")
	}
}

func TestSendSMSErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid number"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := MustNew(testConfig(srv.URL))
	err := client.SendSMS(context.Background(), "bogus", "your code is 123456")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "status 400") {
		t.Fatalf("err = %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  Config
	}{
		{"missing sid", Config{AuthToken: "t", FromNumber: "+1", BaseURL: "https://api.twilio.com"}},
		{"missing token", Config{AccountSID: "AC", FromNumber: "+1", BaseURL: "https://api.twilio.com"}},
		{"missing from", Config{AccountSID: "AC", AuthToken: "t", BaseURL: "https://api.twilio.com"}},
		{"bad url", Config{AccountSID: "AC", AuthToken: "t", FromNumber: "+1", BaseURL: "not a url"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewClient(tc.cfg); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
