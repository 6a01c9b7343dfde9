package view_test

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mediboard/mediboard/internal/shared"
	"github.com/mediboard/mediboard/internal/view"
	_ "github.com/mediboard/mediboard/testing"
)

func TestEngineParsesEmbeddedTemplates(t *testing.T) {
	if _, err := view.NewEngine(); err != nil {
		t.Fatalf("parse templates: %v", err)
	}
}

func TestRenderLoginPage(t *testing.T) {
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/login.html", view.TemplateData{
		Title:     "Sign in",
		CSRFToken: "csrf-abc",
		Data: struct {
			Form   struct{ Identifier string }
			Errors map[string]string
		}{},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	body := res.Body.String()
	if !strings.Contains(body, "csrf-abc") {
		t.Fatalf("expected csrf token in markup")
	}
	if !strings.Contains(body, "Sign in") {
		t.Fatalf("expected page title in markup")
	}
	if ct := res.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
}

func TestRenderFlashPartial(t *testing.T) {
	engine, err := view.NewEngine()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}

	res := httptest.NewRecorder()
	err = engine.Render(res, "pages/home.html", view.TemplateData{
		Title: "Mediboard",
		Flash: &shared.FlashMessage{Kind: "success", Message: "Welcome back"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(res.Body.String(), "Welcome back") {
		t.Fatalf("expected flash message in markup")
	}
}

func TestNewPagerKeepsFilters(t *testing.T) {
	current, _ := url.Parse("/admin/activity?q=paris&method=GET&page=2")
	paging := shared.NewPagination(2, 10, 35)

	pager := view.NewPager(paging, current)
	if len(pager.Pages) != 4 {
		t.Fatalf("expected 4 page links, got %d", len(pager.Pages))
	}
	if !pager.Pages[1].Current {
		t.Fatalf("expected page 2 marked current")
	}
	link := pager.Pages[3].URL
	if !strings.Contains(link, "page=4") || !strings.Contains(link, "q=paris") || !strings.Contains(link, "method=GET") {
		t.Fatalf("page links must preserve the active filters, got %q", link)
	}
}

func TestNewPagerSinglePageHasNoLinks(t *testing.T) {
	current, _ := url.Parse("/admin/activity")
	pager := view.NewPager(shared.NewPagination(1, 20, 5), current)
	if len(pager.Pages) != 0 {
		t.Fatalf("single page listing needs no links, got %d", len(pager.Pages))
	}
}
