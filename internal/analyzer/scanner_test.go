package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"learninghour/internal/codehost"
	"learninghour/internal/errdefs"
	"learninghour/internal/models"
)

const envyFile = `public class UserService {
    public void updateUser(User user) {
        user.getAccount().setBalance(calculateNewBalance());
        user.getProfile().updateLastLogin();
    }
}
`

// fakeHost serves search results per query and file contents per path.
type fakeHost struct {
	results   map[string][]codehost.SearchItem
	files     map[string]string
	searchErr map[string]error
	fileErr   map[string]error
	searches  []string
	fetches   []string
}

func (f *fakeHost) SearchCode(_ context.Context, repo codehost.Repo, query string) ([]codehost.SearchItem, error) {
	f.searches = append(f.searches, repo.FullName()+"|"+query)
	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	return f.results[query], nil
}

func (f *fakeHost) GetFileContent(_ context.Context, _ codehost.Repo, path string) (string, error) {
	f.fetches = append(f.fetches, path)
	if err := f.fileErr[path]; err != nil {
		return "", err
	}
	content, ok := f.files[path]
	if !ok {
		return "", fmt.Errorf("no such file %s", path)
	}
	return content, nil
}

// panicHost fails the test if the scanner touches the network.
type panicHost struct{ t *testing.T }

func (p panicHost) SearchCode(context.Context, codehost.Repo, string) ([]codehost.SearchItem, error) {
	p.t.Fatalf("SearchCode called for an invalid URL")
	return nil, nil
}

func (p panicHost) GetFileContent(context.Context, codehost.Repo, string) (string, error) {
	p.t.Fatalf("GetFileContent called for an invalid URL")
	return "", nil
}

type stubLocator struct{}

func (stubLocator) EnclosingFunction(path string, _ []byte, _, _ int) (models.CodeRegion, bool) {
	return models.CodeRegion{Name: "updateUser", NodeType: "method_declaration"}, strings.HasSuffix(path, ".java")
}

func items(paths ...string) []codehost.SearchItem {
	out := make([]codehost.SearchItem, 0, len(paths))
	for _, p := range paths {
		out = append(out, codehost.SearchItem{Name: p, Path: p})
	}
	return out
}

func TestAnalyzeRepositoryRejectsBadURLBeforeIO(t *testing.T) {
	t.Parallel()

	s := NewScanner(panicHost{t}, nil, nil, nil)
	for _, raw := range []string{"not a url", "https://github.com/only-owner", ""} {
		_, err := s.AnalyzeRepository(context.Background(), raw, "Feature Envy")
		if !errors.Is(err, errdefs.ErrInvalidInput) {
			t.Fatalf("AnalyzeRepository(%q) err=%v, want ErrInvalidInput", raw, err)
		}
	}
}

func TestAnalyzeRepositoryNoResults(t *testing.T) {
	t.Parallel()

	url := "https://github.com/acme/shop"
	s := NewScanner(&fakeHost{}, nil, nil, nil)

	_, err := s.AnalyzeRepository(context.Background(), url, "Feature Envy")
	if !errors.Is(err, errdefs.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "no examples of Feature Envy found") || !strings.Contains(msg, url) {
		t.Fatalf("err=%q should name the smell and repository", msg)
	}
}

func TestAnalyzeRepositoryCollectsExample(t *testing.T) {
	t.Parallel()

	host := &fakeHost{
		results: map[string][]codehost.SearchItem{"get().get": items("src/UserService.java")},
		files:   map[string]string{"src/UserService.java": envyFile},
	}
	s := NewScanner(host, stubLocator{}, nil, nil)

	url := "git@github.com:acme/shop.git"
	got, err := s.AnalyzeRepository(context.Background(), url, "feature envy")
	if err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}
	if got.CodeSmell != "feature envy" || got.RepositoryURL != url {
		t.Fatalf("result should echo inputs, got %q %q", got.CodeSmell, got.RepositoryURL)
	}
	if len(got.Examples) != 1 {
		t.Fatalf("examples=%d, want 1", len(got.Examples))
	}
	ex := got.Examples[0]
	if ex.FilePath != "src/UserService.java" {
		t.Fatalf("FilePath=%q", ex.FilePath)
	}
	if ex.LineNumbers.Start != 3 || ex.LineNumbers.End != 3 {
		t.Fatalf("LineNumbers=%+v, want 3-3", ex.LineNumbers)
	}
	if ex.CodeSnippet != "user.getAccount().setBalance(" {
		t.Fatalf("CodeSnippet=%q", ex.CodeSnippet)
	}
	if ex.ConfidenceScore != 0.7 || ex.ComplexityRating != models.ComplexityLow || ex.ExperienceLevel != models.ExperienceBeginner {
		t.Fatalf("scores=%v/%q/%q", ex.ConfidenceScore, ex.ComplexityRating, ex.ExperienceLevel)
	}
	if ex.EnclosingFunction == nil || ex.EnclosingFunction.Name != "updateUser" {
		t.Fatalf("EnclosingFunction=%+v", ex.EnclosingFunction)
	}
	if host.searches[0] != "acme/shop|get().get" {
		t.Fatalf("search scoped to %q", host.searches[0])
	}
}

func TestAnalyzeRepositoryScoresWholeChain(t *testing.T) {
	t.Parallel()

	file := "class Checkout {\n  void pay(Order o) {\n    o.getCustomer().getPayment().getCard().charge(o.total());\n  }\n}\n"
	host := &fakeHost{
		results: map[string][]codehost.SearchItem{"get().get": items("Checkout.java")},
		files:   map[string]string{"Checkout.java": file},
	}
	got, err := NewScanner(host, nil, nil, nil).AnalyzeRepository(context.Background(), "github.com/acme/shop", "Feature Envy")
	if err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}
	ex := got.Examples[0]
	if ex.ConfidenceScore < 0.9 || ex.ConfidenceScore > 0.95 {
		t.Fatalf("ConfidenceScore=%v, want within [0.9, 0.95]", ex.ConfidenceScore)
	}
	if ex.LineNumbers.Start != 3 || ex.LineNumbers.End != 3 {
		t.Fatalf("LineNumbers=%+v, want 3-3", ex.LineNumbers)
	}
}

func TestAnalyzeRepositoryCapsAtFiveAndFirstThreeItems(t *testing.T) {
	t.Parallel()

	host := &fakeHost{results: map[string][]codehost.SearchItem{}, files: map[string]string{}}
	for q, query := range []string{"get().get", "getCustomer().get", "getAccount().get"} {
		var paths []string
		for i := 0; i < 4; i++ {
			path := fmt.Sprintf("q%d/File%d.java", q, i)
			paths = append(paths, path)
			host.files[path] = envyFile
		}
		host.results[query] = items(paths...)
	}
	s := NewScanner(host, nil, nil, nil)

	got, err := s.AnalyzeRepository(context.Background(), "https://github.com/acme/shop", "Feature Envy")
	if err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}
	if len(got.Examples) != MaxExamples {
		t.Fatalf("examples=%d, want %d", len(got.Examples), MaxExamples)
	}
	want := []string{"q0/File0.java", "q0/File1.java", "q0/File2.java", "q1/File0.java", "q1/File1.java"}
	for i, ex := range got.Examples {
		if ex.FilePath != want[i] {
			t.Fatalf("example %d path=%q, want %q", i, ex.FilePath, want[i])
		}
	}
	for _, path := range host.fetches {
		if strings.HasSuffix(path, "File3.java") {
			t.Fatalf("fetched %q beyond the first three items", path)
		}
	}
	if len(host.searches) != 2 {
		t.Fatalf("searches=%v, want to stop after the cap is reached", host.searches)
	}
}

func TestAnalyzeRepositorySkipsRepeatedPaths(t *testing.T) {
	t.Parallel()

	host := &fakeHost{
		results: map[string][]codehost.SearchItem{
			"get().get":         items("src/UserService.java"),
			"getCustomer().get": items("src/UserService.java"),
		},
		files: map[string]string{"src/UserService.java": envyFile},
	}
	s := NewScanner(host, nil, nil, nil)

	got, err := s.AnalyzeRepository(context.Background(), "https://github.com/acme/shop", "Feature Envy")
	if err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}
	if len(got.Examples) != 1 || len(host.fetches) != 1 {
		t.Fatalf("examples=%d fetches=%d, want 1 and 1", len(got.Examples), len(host.fetches))
	}
}

func TestAnalyzeRepositoryPropagatesNotConnected(t *testing.T) {
	t.Parallel()

	host := &fakeHost{
		searchErr: map[string]error{"get().get": codehost.ErrNotConnected},
		results:   map[string][]codehost.SearchItem{"getCustomer().get": items("src/UserService.java")},
		files:     map[string]string{"src/UserService.java": envyFile},
	}
	s := NewScanner(host, nil, nil, nil)

	_, err := s.AnalyzeRepository(context.Background(), "https://github.com/acme/shop", "Feature Envy")
	if !errors.Is(err, errdefs.ErrNotConfigured) {
		t.Fatalf("err=%v, want ErrNotConfigured", err)
	}
	if len(host.searches) != 1 {
		t.Fatalf("searches=%v, want to stop at the first query", host.searches)
	}
}

func TestAnalyzeRepositorySkipsFailures(t *testing.T) {
	t.Parallel()

	host := &fakeHost{
		searchErr: map[string]error{"get().get": errdefs.Upstream("github search_code", errors.New("status 502"))},
		results: map[string][]codehost.SearchItem{
			"getCustomer().get": items("src/Broken.java", "src/Plain.java", "src/UserService.java"),
		},
		files: map[string]string{
			"src/Plain.java":       "class Plain {}",
			"src/UserService.java": envyFile,
		},
		fileErr: map[string]error{"src/Broken.java": errors.New("connection reset")},
	}
	s := NewScanner(host, nil, nil, nil)

	got, err := s.AnalyzeRepository(context.Background(), "https://github.com/acme/shop", "Feature Envy")
	if err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}
	if len(got.Examples) != 1 || got.Examples[0].FilePath != "src/UserService.java" {
		t.Fatalf("examples=%+v, want only UserService.java", got.Examples)
	}
}

func TestAnalyzeRepositoryUnknownSmellUsesFallback(t *testing.T) {
	t.Parallel()

	host := &fakeHost{
		results: map[string][]codehost.SearchItem{"data clumps": items("geo.py")},
		files:   map[string]string{"geo.py": "# Data often clumps together\ndef area(x, y, w, h):\n    pass\n"},
	}
	s := NewScanner(host, nil, nil, nil)

	got, err := s.AnalyzeRepository(context.Background(), "https://github.com/acme/geo", "Data Clumps")
	if err != nil {
		t.Fatalf("AnalyzeRepository: %v", err)
	}
	if got.Examples[0].CodeSnippet != "Data often clumps" {
		t.Fatalf("CodeSnippet=%q", got.Examples[0].CodeSnippet)
	}
}
