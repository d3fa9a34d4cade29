package proxypool

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/gleaner/config"
)

func TestNewPool_AlwaysContainsDirect(t *testing.T) {
	p := NewPool(nil)
	if p.Size() != 1 {
		t.Fatalf("empty pool size = %d, want 1 (direct)", p.Size())
	}
	ep, reset := p.Choose(nil)
	if ep != Direct || reset {
		t.Errorf("Choose on direct-only pool = (%q, %v), want (direct, false)", ep, reset)
	}
}

func TestNewPool_Deduplicates(t *testing.T) {
	p := NewPool([]Endpoint{"http://1.2.3.4:80", "http://1.2.3.4:80", Direct})
	if p.Size() != 2 {
		t.Errorf("pool size = %d, want 2", p.Size())
	}
}

func TestChoose_ExcludesFailed(t *testing.T) {
	p := NewPool([]Endpoint{"http://1.2.3.4:80", "http://5.6.7.8:80"})
	excluding := map[Endpoint]struct{}{
		"http://1.2.3.4:80": {},
		"http://5.6.7.8:80": {},
	}
	for i := 0; i < 20; i++ {
		ep, reset := p.Choose(excluding)
		if ep != Direct {
			t.Fatalf("Choose returned excluded endpoint %q", ep)
		}
		if reset {
			t.Fatal("reset reported while a candidate remained")
		}
	}
}

func TestChoose_FullExclusionResets(t *testing.T) {
	members := []Endpoint{"http://1.2.3.4:80", "http://5.6.7.8:80"}
	p := NewPool(members)
	excluding := map[Endpoint]struct{}{Direct: {}}
	for _, m := range members {
		excluding[m] = struct{}{}
	}
	ep, reset := p.Choose(excluding)
	if !reset {
		t.Error("full exclusion must report reset")
	}
	found := false
	for _, m := range p.Endpoints() {
		if m == ep {
			found = true
		}
	}
	if !found {
		t.Errorf("reset choice %q is not a pool member", ep)
	}
}

func TestParseProxyTable(t *testing.T) {
	markup := `<html><body><table>
		<tr><th>IP</th><th>Port</th></tr>
		<tr><td>10.0.0.1</td><td>8080</td></tr>
		<tr><td>not-an-ip</td><td>80</td></tr>
		<tr><td>10.0.0.2</td><td>3128</td></tr>
		<tr><td>10.0.0.3</td></tr>
	</table></body></html>`

	got := parseProxyTable(markup)
	want := []string{"http://10.0.0.1:8080", "http://10.0.0.2:3128"}
	if len(got) != len(want) {
		t.Fatalf("parsed %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("proxy[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiscover_PartialSourceFailureNotFatal(t *testing.T) {
	probeSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"origin":"127.0.0.1"}`))
	}))
	defer probeSrv.Close()

	probeHost := strings.TrimPrefix(probeSrv.URL, "http://")
	host, port, _ := strings.Cut(probeHost, ":")

	// One dead source, one serving a table whose single proxy is the
	// probe server itself (so the CONNECT-free http probe succeeds).
	listSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<table><tr><td>%s</td><td>%s</td></tr></table>`, host, port)
	}))
	defer listSrv.Close()

	cfg := config.ProxyConfig{
		Enabled:       true,
		MaxPool:       10,
		Sources:       []string{"http://127.0.0.1:1/dead", listSrv.URL},
		ProbeURL:      probeSrv.URL,
		ProbeTimeout:  2 * time.Second,
		SourceTimeout: 2 * time.Second,
		ValidateLimit: 4,
	}
	p := Discover(context.Background(), cfg)
	if p.Size() != 2 {
		t.Fatalf("pool size = %d, want 2 (direct + validated proxy)", p.Size())
	}

	var proxied Endpoint
	for _, ep := range p.Endpoints() {
		if ep != Direct {
			proxied = ep
		}
	}
	u, err := url.Parse(string(proxied))
	if err != nil || u.Host != probeHost {
		t.Errorf("validated endpoint = %q, want host %q", proxied, probeHost)
	}
}

func TestDiscover_Disabled_DirectOnly(t *testing.T) {
	p := Discover(context.Background(), config.ProxyConfig{Enabled: false})
	if p.Size() != 1 {
		t.Errorf("disabled discovery pool size = %d, want 1", p.Size())
	}
}
