package analyzer

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/ccollicutt/honeylog/pkg/aggregator"
	"github.com/ccollicutt/honeylog/pkg/extractor"
	"github.com/ccollicutt/honeylog/pkg/output"
	"github.com/ccollicutt/honeylog/pkg/parser"
)

// sliceSource is an in-memory LogSource.
type sliceSource struct {
	lines []string
	pos   int
	err   error
}

func (s *sliceSource) Next(_ context.Context) (*parser.LogLine, error) {
	if s.pos >= len(s.lines) {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	s.pos++
	return &parser.LogLine{Content: s.lines[s.pos-1], Source: "mem", LineNum: s.pos}, nil
}

func (s *sliceSource) Close() error { return nil }

func failed(ip string) string {
	return "2023-01-01T10:15:03.000000Z [HoneyPotSSHTransport,1," + ip + "] login attempt [root/123456] failed"
}

func connection(ts, ip string) string {
	return ts + " [cowrie.ssh.factory.CowrieSSHFactory] New connection: " + ip + ":50000 (10.0.0.2:2222)"
}

func succeeded(ip, user, pw string) string {
	return "2023-01-01T10:15:05.000000Z [HoneyPotSSHTransport,1," + ip + "] login attempt [" + user + "/" + pw + "] succeeded"
}

func run(t *testing.T, task Task, lines []string, opts ...AnalyzerOption) *Result {
	t.Helper()

	a, err := NewAnalyzer(opts...)
	if err != nil {
		t.Fatalf("NewAnalyzer() error = %v", err)
	}
	result, err := a.Analyze(context.Background(), task, &sliceSource{lines: lines})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	return result
}

func rowStrings(table *output.Table) []string {
	var rows []string
	for _, r := range table.Rows {
		rows = append(rows, r.Key.String())
	}
	return rows
}

func TestParseTask(t *testing.T) {
	for _, task := range Tasks() {
		got, err := ParseTask(string(task))
		if err != nil || got != task {
			t.Errorf("ParseTask(%q) = %q, %v", task, got, err)
		}
	}

	_, err := ParseTask("brute-force")
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("ParseTask() error = %v, want ErrUnknownTask", err)
	}
}

func TestNewAnalyzer_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  AnalyzerOption
	}{
		{"negative min count", WithMinCount(-1)},
		{"negative min ips", WithMinIPs(-1)},
		{"negative limit", WithLimit(-5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewAnalyzer(tt.opt); err == nil {
				t.Error("NewAnalyzer() expected error")
			}
		})
	}
}

func TestAnalyze_FailedLogins_MinCount(t *testing.T) {
	lines := []string{
		failed("1.2.3.4"),
		failed("1.2.3.4"),
		"unrelated line",
		failed("5.6.7.8"),
		failed("1.2.3.4"),
	}

	result := run(t, TaskFailedLogins, lines, WithMinCount(2))

	if len(result.Metrics) != 1 {
		t.Fatalf("Metrics = %v, want only 1.2.3.4", result.Metrics)
	}
	if got := result.Metrics[aggregator.Single("1.2.3.4")]; got != 3 {
		t.Errorf("count[1.2.3.4] = %d, want 3", got)
	}
	if result.Stats.LinesProcessed != 5 {
		t.Errorf("LinesProcessed = %d, want 5", result.Stats.LinesProcessed)
	}
	if result.Stats.LinesMatched != 4 {
		t.Errorf("LinesMatched = %d, want 4", result.Stats.LinesMatched)
	}
	if result.Stats.Groups != 2 {
		t.Errorf("Groups = %d, want 2", result.Stats.Groups)
	}
}

func TestAnalyze_FailedLogins_ThresholdInclusive(t *testing.T) {
	lines := []string{failed("1.1.1.1"), failed("1.1.1.1"), failed("2.2.2.2")}

	result := run(t, TaskFailedLogins, lines, WithMinCount(2))

	if _, ok := result.Metrics[aggregator.Single("1.1.1.1")]; !ok {
		t.Error("entry equal to --min-count was dropped")
	}
	if _, ok := result.Metrics[aggregator.Single("2.2.2.2")]; ok {
		t.Error("entry below --min-count was kept")
	}
}

func TestAnalyze_FailedLogins_DefaultKeepsAll(t *testing.T) {
	result := run(t, TaskFailedLogins, []string{failed("1.1.1.1"), failed("2.2.2.2")})
	if len(result.Metrics) != 2 {
		t.Errorf("Metrics = %v, want both IPs", result.Metrics)
	}
}

func TestAnalyze_ZeroThresholdsKeepAll(t *testing.T) {
	fingerprint := func(ip string) string {
		return "2023-01-01T10:15:02.500000Z [HoneyPotSSHTransport,1," + ip +
			"] SSH client hassh fingerprint: 0a07365cc01fa9fc82608ba4019af499"
	}

	bots := run(t, TaskIdentifyBots, []string{fingerprint("1.2.3.4")}, WithMinIPs(0))
	if got := bots.Metrics[aggregator.Single("0a07365cc01fa9fc82608ba4019af499")]; got != 1 {
		t.Errorf("identify-bots with min IPs 0: Metrics = %v", bots.Metrics)
	}

	logins := run(t, TaskFailedLogins, []string{failed("1.2.3.4")}, WithMinCount(0))
	if len(logins.Metrics) != 1 {
		t.Errorf("failed-logins with min count 0: Metrics = %v", logins.Metrics)
	}
}

func TestAnalyze_Connections_SameMinute(t *testing.T) {
	lines := []string{
		connection("2023-01-01T10:15:02Z", "1.1.1.1"),
		connection("2023-01-01T10:15:47Z", "2.2.2.2"),
	}

	result := run(t, TaskConnections, lines)

	if len(result.Metrics) != 1 {
		t.Fatalf("Metrics = %v, want a single bucket", result.Metrics)
	}
	if got := result.Metrics[aggregator.Single("2023-01-01 10:15")]; got != 2 {
		t.Errorf("bucket 2023-01-01 10:15 = %d, want 2", got)
	}
}

func TestAnalyze_Connections_OrderIndependentOfInput(t *testing.T) {
	lines := []string{
		connection("2023-01-01T10:17:00.5Z", "1.1.1.1"),
		connection("2023-01-01T09:00:00Z", "1.1.1.1"),
		connection("2023-01-01T10:15:00Z", "1.1.1.1"),
		connection("2023-01-01T10:17:59Z", "1.1.1.1"),
	}
	reversed := make([]string, len(lines))
	for i, l := range lines {
		reversed[len(lines)-1-i] = l
	}

	want := []string{"2023-01-01 09:00", "2023-01-01 10:15", "2023-01-01 10:17"}
	for _, input := range [][]string{lines, reversed} {
		got := rowStrings(run(t, TaskConnections, input).Table)
		if len(got) != len(want) {
			t.Fatalf("rows = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("rows = %v, want %v", got, want)
				break
			}
		}
	}
}

func TestAnalyze_SuccessfulCreds(t *testing.T) {
	lines := []string{
		succeeded("1.1.1.1", "root", "1234"),
		succeeded("1.1.1.1", "root", "admin"),
		succeeded("2.2.2.2", "root", "admin"),
		succeeded("2.2.2.2", "root", "admin"),
		succeeded("3.3.3.3", "root", "admin"),
	}

	result := run(t, TaskSuccessfulCreds, lines)

	rows := result.Table.Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %v, want 2", rows)
	}
	if rows[0].Key != aggregator.Pair("root", "admin") || rows[0].Metric != 3 {
		t.Errorf("first row = %v, want root admin 3", rows[0])
	}
	if rows[1].Key != aggregator.Pair("root", "1234") || rows[1].Metric != 1 {
		t.Errorf("second row = %v, want root 1234 1", rows[1])
	}
}

func TestAnalyze_EmptyInput(t *testing.T) {
	for _, task := range Tasks() {
		t.Run(string(task), func(t *testing.T) {
			result := run(t, task, nil)
			if len(result.Table.Rows) != 0 {
				t.Errorf("rows = %v, want none", result.Table.Rows)
			}
			if len(result.Table.KeyHeaders) == 0 {
				t.Error("table has no headers")
			}
		})
	}
}

func TestAnalyze_ReadError(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("disk on fire")
	_, err = a.Analyze(context.Background(), TaskTopCommands, &sliceSource{lines: []string{"CMD: ls"}, err: boom})
	if !errors.Is(err, boom) {
		t.Errorf("Analyze() error = %v, want wrapped %v", err, boom)
	}
}

func TestAnalyze_UnknownTask(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.Analyze(context.Background(), Task("bogus"), &sliceSource{})
	if !errors.Is(err, ErrUnknownTask) {
		t.Errorf("Analyze() error = %v, want ErrUnknownTask", err)
	}
}

func TestAnalyze_ContextCancelled(t *testing.T) {
	a, err := NewAnalyzer()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = a.Analyze(ctx, TaskTopCommands, &sliceSource{lines: []string{"CMD: ls"}})
	if err != context.Canceled {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
}

func TestAnalyze_WithExtractorOverride(t *testing.T) {
	x, err := extractor.NewWithOverrides(map[extractor.Grammar]string{
		extractor.GrammarFailedLogin: `Failed password for \S+ from (?P<ip>\S+)`,
	})
	if err != nil {
		t.Fatal(err)
	}

	lines := []string{
		"sshd[1]: Failed password for root from 192.0.2.1 port 22 ssh2",
		"sshd[2]: Failed password for admin from 192.0.2.1 port 22 ssh2",
	}
	result := run(t, TaskFailedLogins, lines, WithExtractor(x))

	if got := result.Metrics[aggregator.Single("192.0.2.1")]; got != 2 {
		t.Errorf("count[192.0.2.1] = %d, want 2", got)
	}
}

func TestAnalyze_Fixture(t *testing.T) {
	tests := []struct {
		task Task
		opts []AnalyzerOption
		want []output.Row
	}{
		{
			task: TaskFailedLogins,
			opts: []AnalyzerOption{WithMinCount(2)},
			want: []output.Row{{Key: aggregator.Single("1.2.3.4"), Metric: 3}},
		},
		{
			task: TaskConnections,
			want: []output.Row{
				{Key: aggregator.Single("2023-01-01 10:15"), Metric: 2},
				{Key: aggregator.Single("2023-01-01 10:16"), Metric: 1},
			},
		},
		{
			task: TaskSuccessfulCreds,
			want: []output.Row{
				{Key: aggregator.Pair("root", "admin"), Metric: 3},
				{Key: aggregator.Pair("root", "1234"), Metric: 1},
			},
		},
		{
			task: TaskIdentifyBots,
			want: []output.Row{
				{Key: aggregator.Single("0a07365cc01fa9fc82608ba4019af499"), Metric: 3},
			},
		},
		{
			task: TaskTopCommands,
			opts: []AnalyzerOption{WithLimit(1)},
			want: []output.Row{{Key: aggregator.Single("uname -a"), Metric: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.task), func(t *testing.T) {
			a, err := NewAnalyzer(tt.opts...)
			if err != nil {
				t.Fatal(err)
			}

			source := parser.NewFileSource(filepath.Join("testdata", "cowrie.log"))
			defer source.Close()

			result, err := a.Analyze(context.Background(), tt.task, source)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			if result.Stats.LinesProcessed != 22 {
				t.Errorf("LinesProcessed = %d, want 22", result.Stats.LinesProcessed)
			}

			rows := result.Table.Rows
			if len(rows) != len(tt.want) {
				t.Fatalf("rows = %v, want %v", rows, tt.want)
			}
			for i := range tt.want {
				if rows[i] != tt.want[i] {
					t.Errorf("row %d = %v, want %v", i, rows[i], tt.want[i])
				}
			}
		})
	}
}

func TestResult_Report(t *testing.T) {
	result := run(t, TaskTopCommands, []string{"CMD: ls", "CMD: ls", "noise"})
	report := result.Report()

	if report.Summary.LinesProcessed != 3 || report.Summary.LinesMatched != 2 {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if report.Summary.GroupsReported != 1 {
		t.Errorf("GroupsReported = %d, want 1", report.Summary.GroupsReported)
	}
	if report.Metadata.Task != "top-commands" || report.Metadata.Source != "mem" {
		t.Errorf("Metadata = %+v", report.Metadata)
	}
}

func TestPipeline_Layouts(t *testing.T) {
	a, err := NewAnalyzer(WithMinIPs(5))
	if err != nil {
		t.Fatal(err)
	}

	p, err := a.Pipeline(TaskIdentifyBots)
	if err != nil {
		t.Fatal(err)
	}
	if p.MinMetric != 5 {
		t.Errorf("MinMetric = %d, want 5", p.MinMetric)
	}
	if p.Grammar != extractor.GrammarClientFingerprint {
		t.Errorf("Grammar = %q", p.Grammar)
	}

	p, err = a.Pipeline(TaskConnections)
	if err != nil {
		t.Fatal(err)
	}
	if p.Layout.Order != output.OrderByKey || p.MinMetric != 0 {
		t.Errorf("connections pipeline = %+v", p)
	}
}
