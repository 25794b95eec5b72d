package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

// scenario buys 300 AAPL in two lots at 0.75 and sells half at 0.80.
const scenario = `{"kind":"BUY","id":"b1","date":"2024-05-01","security":{"symbol":"AAPL","exchange":"NASDAQ","name":"Apple"},"quantity":"100","price":"10","currency":"USD","fx_rate":"0.75","commission":"0"}
{"kind":"buy","id":"b2","date":"2024-05-02","security":{"symbol":"AAPL","exchange":"NASDAQ","name":"Apple"},"quantity":"200","price":"12","currency":"USD","fx_rate":"0.75","commission":"0"}
{"kind":"SELL","id":"s1","date":"2024-07-01","security":{"symbol":"AAPL","exchange":"NASDAQ","name":"Apple"},"quantity":"-150","price":"14","currency":"USD","fx_rate":"0.8","commission":"0"}
`

// Helper function to create a temporary file with content.
func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// setup points the global flags at a scenario input and a quiet config, and
// captures the command output.
func setup(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	in := createTempFile(t, "transactions.jsonl", input)
	cfg := createTempFile(t, "ukcgt.yaml", "log_level: error\n")
	raw := true

	oldInput, oldConfig, oldRaw, oldStdout := inputFile, configFile, rawMarkdown, stdout
	var out bytes.Buffer
	inputFile, configFile, rawMarkdown, stdout = &in, &cfg, &raw, &out
	t.Cleanup(func() { inputFile, configFile, rawMarkdown, stdout = oldInput, oldConfig, oldRaw, oldStdout })
	return &out
}

// run sets the flags of c from args and executes it.
func run(t *testing.T, c subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%q) error = %v", args, err)
	}
	return c.Execute(context.Background(), f)
}

func TestCalculateMarkdown(t *testing.T) {
	out := setup(t, scenario)
	if status := run(t, &calculateCmd{}, "-y", "2024-25"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	for _, want := range []string{"# Tax Year 2024-25", "| Net gain | +£405.00 |", "| of which FX | +£85.00 |"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestCalculateJSON(t *testing.T) {
	out := setup(t, scenario)
	if status := run(t, &calculateCmd{}, "-y", "2024", "-json"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	var got struct {
		TaxYear string `json:"tax_year"`
		NetGain struct {
			Amount string `json:"amount"`
		} `json:"net_gain_gbp"`
		Disposals []struct {
			Rule string `json:"rule"`
		} `json:"disposals"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if got.TaxYear != "2024-25" || got.NetGain.Amount != "405" || len(got.Disposals) != 1 || got.Disposals[0].Rule != "SECTION_104" {
		t.Errorf("unexpected summary: %+v", got)
	}
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		args  []string
		want  subcommands.ExitStatus
	}{
		{"bad year", scenario, []string{"-y", "next year"}, subcommands.ExitUsageError},
		{"unsupported year", scenario, []string{"-y", "1999-00"}, subcommands.ExitFailure},
		{"bad input", "not json\n", []string{"-y", "2024-25"}, subcommands.ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setup(t, tt.input)
			if got := run(t, &calculateCmd{}, tt.args...); got != tt.want {
				t.Errorf("Execute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateSavesDisposals(t *testing.T) {
	out := setup(t, scenario)
	db := filepath.Join(t.TempDir(), "ukcgt.db")
	if status := run(t, &calculateCmd{}, "-y", "2024-25", "-db", db); status != subcommands.ExitSuccess {
		t.Fatalf("calculate: expected ExitSuccess, got %v", status)
	}
	out.Reset()
	if status := run(t, &disposalsCmd{}, "-y", "2024-25", "-db", db); status != subcommands.ExitSuccess {
		t.Fatalf("disposals: expected ExitSuccess, got %v", status)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d disposals, want 1:\n%s", len(lines), out)
	}
	var rec struct {
		Symbol    string `json:"symbol"`
		TotalGain string `json:"total_gain_loss_gbp"`
		Rule      string `json:"matching_rule"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Symbol != "AAPL" || rec.TotalGain != "405" || rec.Rule != "SECTION_104" {
		t.Errorf("unexpected record %+v", rec)
	}
}

func TestDisposalsJSONL(t *testing.T) {
	out := setup(t, scenario)
	if status := run(t, &disposalsCmd{}, "-y", "2024-25", "-jsonl"); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	if !strings.Contains(out.String(), `"cgt_gain_loss_gbp":"320"`) {
		t.Errorf("missing CGT part in\n%s", out)
	}
}

func TestQuery(t *testing.T) {
	out := setup(t, scenario)
	status := run(t, &queryCmd{}, "-y", "2024-25", "$.disposal_count", "$.disposals[0].fx_gain_gbp.amount")
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	if got, want := out.String(), "1\n\"85\"\n"; got != want {
		t.Errorf("query output = %q, want %q", got, want)
	}
}

func TestQueryUsage(t *testing.T) {
	setup(t, scenario)
	if got := run(t, &queryCmd{}, "-y", "2024-25"); got != subcommands.ExitUsageError {
		t.Errorf("Execute() = %v, want ExitUsageError", got)
	}
	if got := run(t, &queryCmd{}, "-y", "2024-25", "$.["); got != subcommands.ExitFailure {
		t.Errorf("Execute() = %v, want ExitFailure", got)
	}
}

func TestYears(t *testing.T) {
	out := setup(t, "")
	if status := run(t, &yearsCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	want := "| 2024-25 | 2024-04-06 | 2025-04-05 | £3,000.00 | £500.00 | 2024-10-30 |"
	if !strings.Contains(out.String(), want) {
		t.Errorf("output does not contain %q:\n%s", want, out)
	}
}

func TestTopic(t *testing.T) {
	out := setup(t, "")
	if status := run(t, &topicCmd{}); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}
	if !strings.HasPrefix(out.String(), "# ukcgt") {
		t.Errorf("readme not printed:\n%s", out)
	}
	if status := run(t, &topicCmd{}, "no-such-topic"); status != subcommands.ExitFailure {
		t.Errorf("unknown topic: expected ExitFailure, got %v", status)
	}
}

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, name := range []string{"calculate", "disposals", "query", "years", "topic"} {
		if _, ok := c.Sub[name]; !ok {
			t.Errorf("missing completion for %q", name)
		}
	}
	for _, f := range []string{"y", "json", "db"} {
		if _, ok := c.Sub["calculate"].Flags[f]; !ok {
			t.Errorf("missing completion for calculate -%s", f)
		}
	}
	if c.Sub["topic"].Args == nil {
		t.Error("topic arguments are not completed")
	}
}
