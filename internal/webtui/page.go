package webtui

import (
	"html/template"
	"net/http"
	"strings"
)

var pageTmpl = template.Must(template.New("terminal").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/@xterm/xterm@5.5.0/css/xterm.min.css">
<style>
html, body { height: 100%; margin: 0; background: #111; }
#term { height: 100%; }
</style>
</head>
<body>
<div id="term"></div>
<script src="https://cdn.jsdelivr.net/npm/@xterm/xterm@5.5.0/lib/xterm.min.js"></script>
<script src="https://cdn.jsdelivr.net/npm/@xterm/addon-fit@0.10.0/lib/addon-fit.min.js"></script>
<script>
const term = new Terminal({ cursorBlink: true, fontFamily: "monospace" });
const fit = new FitAddon.FitAddon();
term.loadAddon(fit);
term.open(document.getElementById("term"));
fit.fit();
const proto = location.protocol === "https:" ? "wss:" : "ws:";
const ws = new WebSocket(proto + "//" + location.host + {{.SocketPath}});
ws.binaryType = "arraybuffer";
const resize = () => {
  fit.fit();
  if (ws.readyState === WebSocket.OPEN) {
    ws.send(JSON.stringify({ type: "resize", cols: term.cols, rows: term.rows }));
  }
};
ws.onopen = resize;
ws.onmessage = (ev) => term.write(typeof ev.data === "string" ? ev.data : new Uint8Array(ev.data));
ws.onclose = () => term.write("\r\n[session closed]\r\n");
term.onData((d) => ws.send(d));
window.addEventListener("resize", resize);
</script>
</body>
</html>
`))

type pageVM struct {
	Title      string
	SocketPath string
}

func (b *Bridge) handlePage(w http.ResponseWriter, r *http.Request) {
	title := "hierarchy"
	if ws := strings.TrimSpace(b.cfg.Workspace); ws != "" {
		title += " · " + ws
	}
	vm := pageVM{Title: title, SocketPath: strings.TrimSuffix(r.URL.Path, "/") + "/ws"}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, vm); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
