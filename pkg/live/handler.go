package live

import (
	_ "embed"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/recera/nodecloud/pkg/components/cloudview"
	"github.com/recera/nodecloud/pkg/nodecloud"
	"github.com/recera/nodecloud/pkg/renderer/html"
	"github.com/recera/nodecloud/pkg/vdom"
)

//go:embed client.js
var clientJS []byte

// initialViewport sizes the server-rendered still frame
var initialViewport = nodecloud.Viewport{Width: 960, Height: 640}

const pageStyles = `html,body{margin:0;height:100%;background:#0f172a}
#app{display:flex;height:100%}
#cloud{flex:1;min-width:0}
#detail{width:320px;padding:16px;overflow:auto;border-left:1px solid #1e293b}
#detail:empty{display:none}`

// Handler returns the HTTP routes for the live viewer
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.servePage)
	mux.HandleFunc("GET /live/{session}", s.HandleWebSocket)
	mux.HandleFunc("GET /live/", s.HandleWebSocket)
	mux.HandleFunc("GET /client.js", serveClient)
	mux.HandleFunc("GET /detail/{kind}/{id}", s.serveDetail)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	entities, _ := s.Dataset()
	cloud := cloudview.Viewer(entities, s.cfg.Options, initialViewport)

	body := vdom.NewElement("div", vdom.Props{"id": "app", "data-session": uuid.NewString()},
		vdom.NewElement("div", vdom.Props{"id": "cloud"}, cloud),
		vdom.NewElement("aside", vdom.Props{"id": "detail"}),
	)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	err := html.WriteDocument(w, html.Page{
		Title:   s.cfg.Title,
		Styles:  cloudview.Styles + "\n" + pageStyles,
		Body:    body,
		Scripts: []string{"/client.js"},
	})
	if err != nil {
		s.log.Debug("page write failed", zap.Error(err))
	}
}

func (s *Server) serveDetail(w http.ResponseWriter, r *http.Request) {
	kind, err := nodecloud.ParseKind(r.PathValue("kind"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, g := s.Dataset()
	tree, err := cloudview.Detail(g, r.PathValue("id"), kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := html.NewRenderer(w).Render(tree); err != nil {
		s.log.Debug("detail write failed", zap.Error(err))
	}
}

func serveClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(clientJS)
}
