package app

import (
	"bytes"
	"classlint/internal/core/config"
	"classlint/internal/core/ports"
	"classlint/internal/data/history"
	"classlint/internal/engine/checks"
	"classlint/internal/engine/classfile/classfiletest"
	"classlint/internal/engine/runner"
	"classlint/internal/shared/util"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money() *classfiletest.Builder {
	return classfiletest.New("com/acme/Money", "java/lang/Object").
		Method(classfiletest.AccPublic, "equals", "(Ljava/lang/Object;)Z", classfiletest.ReturnFalse)
}

func order() *classfiletest.Builder {
	return classfiletest.New("com/acme/Order", "java/lang/Object").
		Field(classfiletest.AccPublic, "total", "I").
		Method(classfiletest.AccPublic, "hashCode", "()I", classfiletest.ReturnFalse).
		Method(classfiletest.AccPublic, "equals", "(Ljava/lang/Object;)Z", classfiletest.ReturnFalse)
}

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Project = "shop"
	cfg.Paths.ProjectRoot = root
	cfg.Inputs = []string{filepath.Join(root, "classes")}
	cfg.Analysis.Workers = 2
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func findingsOf(res ports.RunResult, check string) []checks.Finding {
	var out []checks.Finding
	for _, f := range res.Findings {
		if f.CheckName == check {
			out = append(out, f)
		}
	}
	return out
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	classes := filepath.Join(root, "classes")
	classfiletest.WriteClass(t, classes, money())
	classfiletest.WriteClass(t, classes, classfiletest.New("com/acme/MoneyTest", "java/lang/Object"))
	classfiletest.WriteClass(t, filepath.Join(classes, ".cache"), order())
	require.NoError(t, os.WriteFile(filepath.Join(classes, "README.txt"), []byte("x"), 0o644))
	jar := classfiletest.WriteJar(t, filepath.Join(root, "lib", "dep.jar"), order())

	exclude, err := util.CompilePatterns([]string{"**/*Test.class"})
	require.NoError(t, err)

	missing := filepath.Join(root, "nope")
	inputs, failures := Discover([]string{classes, jar, classes, missing}, exclude)

	require.Len(t, inputs, 2)
	assert.Equal(t, ports.InputClass, inputs[0].Kind)
	assert.True(t, strings.HasSuffix(filepath.ToSlash(inputs[0].Path), "com/acme/Money.class"))
	assert.Equal(t, ports.Input{Path: jar, Kind: ports.InputJar}, inputs[1])

	require.Len(t, failures, 1)
	assert.Equal(t, missing, failures[0].Path)
}

func TestDiscover_RejectsUnsupportedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	inputs, failures := Discover([]string{path}, nil)
	assert.Empty(t, inputs)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Error, "not a .class file or jar")
}

func TestLoader(t *testing.T) {
	root := t.TempDir()
	moneyPath := classfiletest.WriteClass(t, root, money())
	generated := classfiletest.WriteClass(t, root, classfiletest.New("com/acme/gen/Stub", "java/lang/Object"))
	broken := filepath.Join(root, "Broken.class")
	require.NoError(t, os.WriteFile(broken, []byte("not a class"), 0o644))
	jar := classfiletest.WriteJar(t, filepath.Join(root, "dep.jar"),
		classfiletest.New("com/acme/Money", "java/lang/Number"),
		order(),
	)

	loader, err := NewLoader(LoaderOptions{ExcludeClasses: []string{"com.acme.gen.**"}, Workers: 3})
	require.NoError(t, err)

	res, err := loader.Load(context.Background(), []ports.Input{
		{Path: moneyPath, Kind: ports.InputClass},
		{Path: generated, Kind: ports.InputClass},
		{Path: broken, Kind: ports.InputClass},
		{Path: jar, Kind: ports.InputJar},
	})
	require.NoError(t, err)

	require.Len(t, res.Classes, 2)
	assert.Equal(t, "com/acme/Money", res.Classes[0].Name)
	assert.Equal(t, "java/lang/Object", res.Classes[0].Super, "first definition wins")
	assert.Equal(t, "com/acme/Order", res.Classes[1].Name)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, broken, res.Failures[0].Path)
}

func TestLoader_InvalidPattern(t *testing.T) {
	_, err := NewLoader(LoaderOptions{ExcludeClasses: []string{"com.[acme"}})
	assert.Error(t, err)
}

func TestLoader_Cancelled(t *testing.T) {
	loader, err := NewLoader(LoaderOptions{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = loader.Load(ctx, []ports.Input{{Path: "a.class", Kind: ports.InputClass}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalysisService_Run(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), money())
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), order())
	require.NoError(t, os.WriteFile(filepath.Join(root, "classes", "Bad.class"), []byte{0xCA, 0xFE}, 0o644))

	cfg := testConfig(t, root)
	cfg.Classpath = []string{filepath.Join(root, "missing.jar")}
	svc := newTestApp(t, cfg).AnalysisService()

	res, err := svc.Run(context.Background(), ports.RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Classes)
	assert.Len(t, res.Checks, len(svc.Checks()))
	assert.Empty(t, res.RunID, "history disabled")
	require.Len(t, res.LoadFailures, 1)
	assert.True(t, strings.HasSuffix(res.LoadFailures[0].Path, "Bad.class"))

	hc := findingsOf(res, "HashCodeEquals")
	require.Len(t, hc, 1)
	assert.Equal(t, "com.acme.Money", hc[0].Location)
	assert.Equal(t, checks.Principle, hc[0].Category)

	enc := findingsOf(res, "Encapsulation")
	require.Len(t, enc, 1)
	assert.Equal(t, "com.acme.Order.total", enc[0].Location)
}

func TestAnalysisService_RunSelectsChecks(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), money())
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), order())
	svc := newTestApp(t, testConfig(t, root)).AnalysisService()

	res, err := svc.Run(context.Background(), ports.RunRequest{Include: []string{"hashcode*", "encapsulation"}, Exclude: []string{"Encapsulation"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"HashCodeEquals"}, res.Checks)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, "HashCodeEquals", res.Findings[0].CheckName)

	_, err = svc.Run(context.Background(), ports.RunRequest{Include: []string{"NoSuchCheck"}})
	assert.Error(t, err)
}

func TestAnalysisService_RunWithoutInputs(t *testing.T) {
	cfg := testConfig(t, t.TempDir())
	cfg.Inputs = nil
	_, err := newTestApp(t, cfg).AnalysisService().Run(context.Background(), ports.RunRequest{})
	assert.Error(t, err)
}

func TestAnalysisService_RunResolvesClasspath(t *testing.T) {
	root := t.TempDir()
	// The abstract parent lives only in the classpath jar.
	classfiletest.WriteClass(t, filepath.Join(root, "classes"),
		classfiletest.New("com/acme/Impl", "com/acme/Base"))
	jar := classfiletest.WriteJar(t, filepath.Join(root, "lib", "api.jar"),
		classfiletest.New("com/acme/Base", "java/lang/Object").
			Access(classfiletest.AccPublic|classfiletest.AccAbstract).
			Method(classfiletest.AccPublic|classfiletest.AccAbstract, "run", "()V", nil))

	cfg := testConfig(t, root)
	cfg.Classpath = []string{jar}
	svc := newTestApp(t, cfg).AnalysisService()

	res, err := svc.Run(context.Background(), ports.RunRequest{Include: []string{"AbstractImplementation"}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Classes, "classpath classes are not analyzed")
	assert.GreaterOrEqual(t, res.Resolver.Loads, int64(1))
	require.Len(t, res.Findings, 1)
	assert.Contains(t, res.Findings[0].Message, "'run()V' from Base")

	cfg.Classpath = nil
	res, err = newTestApp(t, cfg).AnalysisService().Run(context.Background(), ports.RunRequest{Include: []string{"AbstractImplementation"}})
	require.NoError(t, err)
	assert.Empty(t, res.Findings, "unresolvable parent is treated as absent")
}

func TestAnalysisService_HistoryRoundTrip(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), money())
	svc := newTestApp(t, testConfig(t, root)).AnalysisService()
	ctx := context.Background()

	first, err := svc.Run(ctx, ports.RunRequest{Include: []string{"HashCodeEquals"}, Save: true})
	require.NoError(t, err)
	require.NotEmpty(t, first.RunID)
	assert.FileExists(t, filepath.Join(root, ".classlint", "history.db"))

	classfiletest.WriteClass(t, filepath.Join(root, "classes"), order())
	second, err := svc.Run(ctx, ports.RunRequest{Include: []string{"HashCodeEquals", "Encapsulation"}, Save: true})
	require.NoError(t, err)

	hist, err := svc.History(ctx, ports.HistoryRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, hist.Runs, 2)
	assert.Equal(t, second.RunID, hist.Runs[0].ID)
	assert.Equal(t, "shop", hist.Runs[0].ProjectKey)
	require.NotNil(t, hist.Trend)
	assert.Equal(t, 2, hist.Trend.RunCount)
	assert.Equal(t, 1, hist.Trend.Points[1].DeltaFindings)
	assert.Len(t, hist.Counts, 2)

	one, err := svc.History(ctx, ports.HistoryRequest{RunID: first.RunID})
	require.NoError(t, err)
	require.Len(t, one.Runs, 1)
	assert.Equal(t, 1, one.Runs[0].FindingCount)
	assert.Nil(t, one.Trend)

	_, err = svc.History(ctx, ports.HistoryRequest{RunID: "missing"})
	assert.Error(t, err)
}

type stubHistory struct {
	recorded int
}

func (s *stubHistory) Record(projectKey string, result runner.Result, loadFailures int) (history.Run, error) {
	s.recorded++
	return history.Run{ID: "stub-run", ProjectKey: projectKey}, nil
}

func (s *stubHistory) ListRuns(string, int) ([]history.Run, error)        { return nil, nil }
func (s *stubHistory) LoadRun(string) (history.Run, error)                { return history.Run{}, nil }
func (s *stubHistory) CountsByCheck(string) ([]history.CheckCount, error) { return nil, nil }
func (s *stubHistory) Prune(string, int) (int64, error)                   { return 0, nil }

func TestAnalysisService_DBEnabledUsesInjectedStore(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), money())
	cfg := testConfig(t, root)
	cfg.DB.Enabled = true

	store := &stubHistory{}
	a, err := NewWithDependencies(cfg, Dependencies{History: store})
	require.NoError(t, err)

	res, err := a.AnalysisService().Run(context.Background(), ports.RunRequest{})
	require.NoError(t, err)
	assert.Equal(t, "stub-run", res.RunID)
	assert.Equal(t, 1, store.recorded)
	assert.NoFileExists(t, filepath.Join(root, ".classlint", "history.db"))
}

func TestWriteReport(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), money())
	cfg := testConfig(t, root)
	a := newTestApp(t, cfg)

	res, err := a.AnalysisService().Run(context.Background(), ports.RunRequest{Include: []string{"HashCodeEquals"}})
	require.NoError(t, err)

	var stdout bytes.Buffer
	path, err := a.WriteReport(ReportRequest{Format: "tsv", Stdout: &stdout}, res)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Contains(t, stdout.String(), "HashCodeEquals\tPrinciple\tcom.acme.Money")

	out := filepath.Join(root, "out", "report.sarif")
	path, err = a.WriteReport(ReportRequest{Format: "sarif", Output: out}, res)
	require.NoError(t, err)
	assert.Equal(t, out, path)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"ruleId": "HashCodeEquals"`)

	_, err = a.WriteReport(ReportRequest{Format: "xml"}, res)
	assert.Error(t, err)
}

func TestWriteReport_InjectsMarkdownSummary(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), money())
	cfg := testConfig(t, root)
	cfg.Output.InjectMarker = "analysis"
	a := newTestApp(t, cfg)

	res, err := a.AnalysisService().Run(context.Background(), ports.RunRequest{Include: []string{"HashCodeEquals"}})
	require.NoError(t, err)

	readme := filepath.Join(root, "README.md")
	doc := "# Shop\n<!-- classlint:analysis:start -->\nstale\n<!-- classlint:analysis:end -->\nfooter\n"
	require.NoError(t, os.WriteFile(readme, []byte(doc), 0o644))

	path, err := a.WriteReport(ReportRequest{Format: "markdown", Output: readme}, res)
	require.NoError(t, err)
	assert.Equal(t, readme, path)
	content, err := os.ReadFile(readme)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# Shop\n"))
	assert.True(t, strings.HasSuffix(string(content), "footer\n"))
	assert.Contains(t, string(content), "| HashCodeEquals | Principle | 1 |")
	assert.NotContains(t, string(content), "stale")

	fresh := filepath.Join(root, "out", "report.md")
	_, err = a.WriteReport(ReportRequest{Format: "markdown", Output: fresh}, res)
	require.NoError(t, err)
	content, err = os.ReadFile(fresh)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# Analysis Report", "missing files get the full report")

	broken := filepath.Join(root, "NOTES.md")
	require.NoError(t, os.WriteFile(broken, []byte("no markers\n"), 0o644))
	_, err = a.WriteReport(ReportRequest{Format: "markdown", Output: broken}, res)
	assert.Error(t, err)
}

func TestAnalysisService_RetentionPrunesOldRuns(t *testing.T) {
	root := t.TempDir()
	classfiletest.WriteClass(t, filepath.Join(root, "classes"), money())
	cfg := testConfig(t, root)
	cfg.DB.Retention = 2
	svc := newTestApp(t, cfg).AnalysisService()
	ctx := context.Background()

	var last ports.RunResult
	for i := 0; i < 4; i++ {
		res, err := svc.Run(ctx, ports.RunRequest{Include: []string{"HashCodeEquals"}, Save: true})
		require.NoError(t, err)
		last = res
	}

	hist, err := svc.History(ctx, ports.HistoryRequest{})
	require.NoError(t, err)
	assert.Len(t, hist.Runs, 2)

	one, err := svc.History(ctx, ports.HistoryRequest{RunID: last.RunID})
	require.NoError(t, err)
	assert.Len(t, one.Runs, 1)
}

func TestHealthService(t *testing.T) {
	a := newTestApp(t, testConfig(t, t.TempDir()))
	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "ok (13 checks)", status.Components["registry"])
	assert.Equal(t, "disabled", status.Components["history"])
	assert.Contains(t, status.Components["heap"], "MB")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, "down", NewHealthService(a).Check(ctx).Status)
}

func TestReconfigure(t *testing.T) {
	root := t.TempDir()
	a := newTestApp(t, testConfig(t, root))

	next := testConfig(t, root)
	next.Project = "billing"
	next.Exclude.Classes = []string{"com.[bad"}
	assert.Error(t, a.Reconfigure(next))
	assert.Equal(t, "shop", a.ProjectKey(), "rejected config leaves the old one active")

	next.Exclude.Classes = nil
	require.NoError(t, a.Reconfigure(next))
	assert.Equal(t, "billing", a.ProjectKey())
}

func TestWatchService(t *testing.T) {
	root := t.TempDir()
	classes := filepath.Join(root, "classes")
	classfiletest.WriteClass(t, classes, order())

	cfg := testConfig(t, root)
	cfg.Watch.Debounce = 20 * time.Millisecond
	cfg.Watch.MaxRate = 100
	cfg.Watch.Burst = 10
	a := newTestApp(t, cfg)
	watch := a.AnalysisService().WatchService()

	var (
		mu      sync.Mutex
		updates []ports.WatchUpdate
	)
	watch.Subscribe(func(u ports.WatchUpdate) {
		mu.Lock()
		updates = append(updates, u)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watch.Start(ctx, ports.RunRequest{Include: []string{"HashCodeEquals"}}))
	defer watch.Stop()

	mu.Lock()
	require.Len(t, updates, 1, "initial analysis is emitted synchronously")
	assert.Empty(t, updates[0].Result.Findings)
	mu.Unlock()

	assert.Error(t, watch.Start(ctx, ports.RunRequest{}), "second start")

	classfiletest.WriteClass(t, classes, money())
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		last := updates[len(updates)-1]
		return len(last.Changed) > 0 && len(last.Result.Findings) == 1
	}, 5*time.Second, 20*time.Millisecond)
}
