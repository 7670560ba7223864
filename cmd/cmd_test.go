package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	drawBody = `{"success":true,"deck_id":"d1","remaining":50,"cards":[
		{"code":"AS","value":"ACE","suit":"SPADES","image":"http://img.test/AS.png"},
		{"code":"0D","value":"10","suit":"DIAMONDS","image":"http://img.test/0D.png"}]}`
	quakesBody = `{"type":"FeatureCollection","features":[
		{"type":"Feature","id":"a","properties":{"mag":4.2},"geometry":{"type":"Point","coordinates":[-0.09,51.505,10]}}]}`
)

func init() {
	color.NoColor = true
}

// resetCommands puts every flag back to its default and hands every command
// ctx, since cobra only fills in a subcommand's context when it has none
func resetCommands(c *cobra.Command, ctx context.Context) {
	c.SetContext(ctx)
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommands(sub, ctx)
	}
}

// run executes the root command with an isolated config directory
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runContext(t, context.Background(), args...)
}

func runContext(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetCommands(RootCmd, ctx)

	var out, errOut bytes.Buffer
	RootCmd.SetArgs(args)
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetIn(strings.NewReader(""))
	err := Execute(ctx)
	return out.String(), errOut.String(), err
}

func feedServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCardsCommand(t *testing.T) {
	srv := feedServer(t, http.StatusOK, drawBody)
	t.Setenv("FEEDVIEW_CARDS_URL", srv.URL+"/draw/?count=10")

	out, _, err := run(t, "cards", "--no-images", "--prompt", "never", "--select", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Select a Card", "[0]", "ACE of", "[1]", "Selected Card", "  10 of DIAMONDS"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCardsCommand_Interactive(t *testing.T) {
	srv := feedServer(t, http.StatusOK, drawBody)
	t.Setenv("FEEDVIEW_CARDS_URL", srv.URL+"/draw/")

	RootCmd.SetIn(strings.NewReader("0\nq\n"))
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	resetCommands(RootCmd, context.Background())
	var out bytes.Buffer
	RootCmd.SetArgs([]string{"cards", "--no-images", "--prompt", "always"})
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&bytes.Buffer{})
	if err := Execute(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Select a card [0-1] or q to quit: ") {
		t.Errorf("missing prompt:\n%s", got)
	}
	if !strings.Contains(got, "  ACE of SPADES") {
		t.Errorf("expected selection of card 0:\n%s", got)
	}
}

func TestCardsCommand_DrawFailure(t *testing.T) {
	srv := feedServer(t, http.StatusServiceUnavailable, "")
	t.Setenv("FEEDVIEW_CARDS_URL", srv.URL+"/draw/")

	out, logs, err := run(t, "cards", "--no-images", "--prompt", "never", "--select", "3")
	if err != nil {
		t.Fatalf("a failed draw should not fail the command: %v", err)
	}
	if !strings.Contains(out, "Select a Card") || strings.Contains(out, "[0]") {
		t.Errorf("expected an empty grid:\n%s", out)
	}
	if !strings.Contains(logs, "card draw failed") {
		t.Errorf("expected the failure to be logged, got %q", logs)
	}
}

func TestCardsCommand_ShortDraw(t *testing.T) {
	srv := feedServer(t, http.StatusOK, `{"success":false,"error":"Not enough cards remaining to draw 5 additional","remaining":0,"cards":[
		{"code":"KS","value":"KING","suit":"SPADES","image":"http://img.test/KS.png"}]}`)
	t.Setenv("FEEDVIEW_CARDS_URL", srv.URL+"/draw/")

	out, logs, err := run(t, "cards", "--no-images", "--prompt", "never", "--count", "5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "[0]") || !strings.Contains(out, "KING of") {
		t.Errorf("expected the cards the deck still had:\n%s", out)
	}
	if !strings.Contains(logs, "deck ran short") {
		t.Errorf("expected a short draw warning, got %q", logs)
	}
}

func TestCardsCommand_CountOutOfRange(t *testing.T) {
	for _, count := range []string{"0", "53"} {
		if _, _, err := run(t, "cards", "--no-images", "--prompt", "never", "--count", count); err == nil {
			t.Errorf("expected an error for --count %s", count)
		}
	}
}

func TestCardsCommand_UnknownSelection(t *testing.T) {
	srv := feedServer(t, http.StatusOK, drawBody)
	t.Setenv("FEEDVIEW_CARDS_URL", srv.URL+"/draw/")

	if _, _, err := run(t, "cards", "--no-images", "--prompt", "never", "--select", "7"); err == nil {
		t.Error("expected an error for a card outside the draw")
	}
}

func TestCardsCommand_BadPrompt(t *testing.T) {
	if _, _, err := run(t, "cards", "--prompt", "sometimes"); err == nil {
		t.Error("expected an error for an invalid --prompt value")
	}
}

func TestQuakesCommand(t *testing.T) {
	srv := feedServer(t, http.StatusOK, quakesBody)
	t.Setenv("FEEDVIEW_QUAKES_URL", srv.URL)

	out, _, err := run(t, "quakes", "--width", "40", "--height", "12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"OpenStreetMap", "Map: 1 markers, 1 in view", "Magnitude: 4.2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestQuakesCommand_FetchFailure(t *testing.T) {
	srv := feedServer(t, http.StatusOK, "not json")
	t.Setenv("FEEDVIEW_QUAKES_URL", srv.URL)

	out, logs, err := run(t, "quakes", "--width", "40", "--height", "12", "--center", "0,0", "--zoom", "2")
	if err != nil {
		t.Fatalf("a failed fetch should not fail the command: %v", err)
	}
	if !strings.Contains(out, "Map: 0 markers, 0 in view (center 0.0000, 0.0000, zoom 2)") {
		t.Errorf("expected a base layer only map:\n%s", out)
	}
	if !strings.Contains(logs, "Error fetching data") {
		t.Errorf("expected the failure to be logged, got %q", logs)
	}
}

func TestQuakesCommand_Cancelled(t *testing.T) {
	srv := feedServer(t, http.StatusOK, quakesBody)
	t.Setenv("FEEDVIEW_QUAKES_URL", srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, logs, err := runContext(t, ctx, "quakes", "--width", "40", "--height", "12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Map: 0 markers") {
		t.Errorf("expected no markers after cancellation:\n%s", out)
	}
	if !strings.Contains(logs, "context canceled") {
		t.Errorf("expected the cancellation to reach the fetch, got %q", logs)
	}
}

func TestParseLatLng(t *testing.T) {
	testCases := []struct {
		in       string
		lat, lng float64
		wantErr  bool
	}{
		{"51.505,-0.09", 51.505, -0.09, false},
		{" 35.68 , 139.69 ", 35.68, 139.69, false},
		{"51.505", 0, 0, true},
		{"north,0", 0, 0, true},
		{"0,east", 0, 0, true},
		{"91,0", 0, 0, true},
		{"0,-181", 0, 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseLatLng(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected an error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Lat != tc.lat || got.Lng != tc.lng {
				t.Errorf("expected %v,%v, got %+v", tc.lat, tc.lng, got)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "draw.json")
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(good, []byte(drawBody), 0644)
	os.WriteFile(bad, []byte(`{"hello":"world"}`), 0644)

	out, _, err := run(t, "validate", good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Payload: card draw") || !strings.Contains(out, "is a valid card draw") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _, err = run(t, "validate", bad)
	if err == nil {
		t.Error("expected an unrecognized payload to fail")
	}
	if !strings.Contains(out, "1 validation errors") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, _, err := run(t, "validate", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedview.toml")

	out, _, err := run(t, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Created config file at "+path) {
		t.Errorf("unexpected output: %q", out)
	}

	out, _, _ = run(t, "config", "init", "--config", path)
	if !strings.Contains(out, "already exists") {
		t.Errorf("expected init to keep an existing file, got %q", out)
	}

	t.Setenv("FEEDVIEW_ADDR", ":9999")
	out, _, err = run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"# " + path, "[cards]", "count = 10", `addr = ":9999"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
