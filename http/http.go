package http

import (
	"html/template"
	"io"
	"net/http"

	"github.com/blelem/acfscope/render"
	"github.com/blelem/acfscope/session"
)

// surfaceScale upsamples the heatmap so a 250 point grid is 500px wide.
const surfaceScale = 2

type indexHandler struct {
	s    *session.Session
	tmpl *template.Template
}

type indexData struct {
	Params  session.Params
	FreqMax float64
	CodeMax float64
	Size    int

	Tp, Strength, FreqOffset, CodeOffset, Phase session.Bound
}

const indexTmplStr = `<!DOCTYPE html>
<html>
<head>
<title>ACF</title>
<style>
body { font-family: sans-serif; margin: 1em; }
.row { display: flex; gap: 2em; }
.panel { background: beige; padding: 0.5em 1em; border-radius: 4px; }
label { display: block; margin-top: 0.6em; }
input[type=range] { width: 18em; }
#acf { position: relative; cursor: crosshair; }
#acf img { display: block; image-rendering: pixelated; }
#vline, #hline { position: absolute; pointer-events: none; }
#vline { top: 0; bottom: 0; border-left: 3px dashed black; }
#hline { left: 0; right: 0; border-top: 3px dashed #eb34c9; }
canvas { border: 1px solid #ccc; display: block; margin-bottom: 0.5em; }
</style>
</head>
<body>
<h1>Autocorrelation of a BPSK signal with multipath</h1>
<div class="row">
<div>
<div id="acf" style="width: {{.Size}}px; height: {{.Size}}px">
<img id="surface" src="surface.png" width="{{.Size}}" height="{{.Size}}"/>
<div id="vline"></div><div id="hline"></div>
</div>
<p>delta f [{{printf "%g" (neg .FreqMax)}}, {{printf "%g" .FreqMax}}] Hz &times;
code delay [{{printf "%g" (neg .CodeMax)}}, {{printf "%g" .CodeMax}}] chips</p>
<p id="status"></p>
</div>
<div>
<h3>Parameters</h3>
<label>Integration time [ms] <span id="tp_v"></span>
<input type="range" id="tp" min="{{.Tp.Min}}" max="{{.Tp.Max}}" step="{{.Tp.Step}}" value="{{.Params.IntegrationTimeMs}}"/></label>
<div class="panel">
<h3>Multipath</h3>
<label>Strength <span id="strength_v"></span>
<input type="range" id="strength" min="{{.Strength.Min}}" max="{{.Strength.Max}}" step="{{.Strength.Step}}" value="{{.Params.Multipath.Strength}}"/></label>
<label>Delta freq [Hz] <span id="freq_v"></span>
<input type="range" id="freq" min="{{.FreqOffset.Min}}" max="{{.FreqOffset.Max}}" step="{{.FreqOffset.Step}}" value="{{.Params.Multipath.FreqOffset}}"/></label>
<label>Delta code [chips] <span id="code_v"></span>
<input type="range" id="code" min="{{.CodeOffset.Min}}" max="{{.CodeOffset.Max}}" step="{{.CodeOffset.Step}}" value="{{.Params.Multipath.CodeOffset}}"/></label>
<label>Delta phase [rad] <span id="phase_v"></span>
<input type="range" id="phase" min="{{.Phase.Min}}" max="{{.Phase.Max}}" step="{{.Phase.Step}}" value="{{.Params.Multipath.Phase}}"/></label>
</div>
</div>
<div>
<h3 id="freq_title">freq slice</h3>
<canvas id="freq_slice" width="420" height="200"></canvas>
<h3 id="code_title">code slice</h3>
<canvas id="code_slice" width="420" height="200"></canvas>
</div>
</div>
<script>
const FMAX = {{.FreqMax}}, CMAX = {{.CodeMax}}, SIZE = {{.Size}};
const ids = ["tp", "strength", "freq", "code", "phase"];
const el = id => document.getElementById(id);
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.binaryType = "blob";
let imgURL = null;

function params() {
	return {
		integration_time_s: parseFloat(el("tp").value) * 1e-3,
		multipath: {
			strength: parseFloat(el("strength").value),
			freq_offset_hz: parseFloat(el("freq").value),
			code_offset_chips: parseFloat(el("code").value),
			phase_rad: parseFloat(el("phase").value),
		},
	};
}
ids.forEach(id => {
	el(id).addEventListener("input", () => { el(id + "_v").textContent = el(id).value; });
	el(id).addEventListener("change", () => ws.send(JSON.stringify({type: "params", params: params()})));
	el(id + "_v").textContent = el(id).value;
});
el("acf").addEventListener("click", ev => {
	const r = el("acf").getBoundingClientRect();
	const freq = -FMAX + (ev.clientX - r.left) / r.width * 2 * FMAX;
	const code = CMAX - (ev.clientY - r.top) / r.height * 2 * CMAX;
	ws.send(JSON.stringify({type: "crosshair", freq: freq, code: code}));
});

function linspace(lo, hi, n) {
	const a = [];
	for (let i = 0; i < n; i++) a.push(lo + (hi - lo) * i / (n - 1));
	return a;
}
function drawSlice(id, xs, ys, at, value, line, dot) {
	const c = el(id), ctx = c.getContext("2d");
	const ymax = Math.max(...ys, 1e-9);
	const px = x => (x - xs[0]) / (xs[xs.length - 1] - xs[0]) * (c.width - 20) + 10;
	const py = y => c.height - 10 - y / ymax * (c.height - 20);
	ctx.clearRect(0, 0, c.width, c.height);
	ctx.strokeStyle = line; ctx.setLineDash([6, 4]); ctx.lineWidth = 2;
	ctx.beginPath();
	xs.forEach((x, i) => i ? ctx.lineTo(px(x), py(ys[i])) : ctx.moveTo(px(x), py(ys[i])));
	ctx.stroke();
	ctx.fillStyle = dot; ctx.beginPath();
	ctx.arc(px(at), py(value), 5, 0, 2 * Math.PI); ctx.fill();
}
function showView(v) {
	const n = v.grid.resolution, ch = v.crosshair;
	el("vline").style.left = ((ch.freq + FMAX) / (2 * FMAX) * SIZE) + "px";
	el("hline").style.top = ((CMAX - ch.code) / (2 * CMAX) * SIZE) + "px";
	el("freq_title").textContent = "freq slice @ code_delay: " + ch.code.toFixed(2) + " chips";
	el("code_title").textContent = "code slice @ freq: " + ch.freq.toFixed(2) + " Hz";
	drawSlice("freq_slice", linspace(-FMAX, FMAX, n), v.slices.freq, ch.freq, v.slices.value, "#eb34c9", "black");
	drawSlice("code_slice", linspace(-CMAX, CMAX, n), v.slices.code, ch.code, v.slices.value, "black", "#eb34c9");
	el("status").textContent = "value at crosshair: " + v.slices.value.toFixed(4) +
		", peak " + v.peak.value.toFixed(4) + " at (" + v.peak_freq.toFixed(1) + " Hz, " + v.peak_code.toFixed(3) + " chips)";
}
ws.onmessage = ev => {
	if (typeof ev.data !== "string") {
		if (imgURL) URL.revokeObjectURL(imgURL);
		imgURL = URL.createObjectURL(ev.data);
		el("surface").src = imgURL;
		return;
	}
	const msg = JSON.parse(ev.data);
	if (msg.type === "view") showView(msg);
	else if (msg.type === "error") el("status").textContent = msg.error;
};
</script>
</body>
</html>
`

func newIndexHandler(s *session.Session) http.Handler {
	funcs := template.FuncMap{"neg": func(v float64) float64 { return -v }}
	return &indexHandler{
		s:    s,
		tmpl: template.Must(template.New("index").Funcs(funcs).Parse(indexTmplStr)),
	}
}

func (h *indexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	g := h.s.Grid()
	d := indexData{
		Params:     h.s.Params(),
		FreqMax:    g.FreqMax(),
		CodeMax:    g.CodeMax(),
		Size:       len(g.Freq) * surfaceScale,
		Tp:         session.IntegrationTimeBound,
		Strength:   session.StrengthBound,
		FreqOffset: session.FreqOffsetBound,
		CodeOffset: session.CodeOffsetBound,
		Phase:      session.PhaseBound,
	}
	w.Header().Set("Content-Type", "text/html")
	if err := h.tmpl.Execute(w, d); err != nil {
		io.WriteString(w, err.Error())
	}
}

// NewHandler routes the dashboard page, its JSON API and the websocket.
func NewHandler(s *session.Session, cm render.Colormap) http.Handler {
	api := &apiHandler{s: s, cm: cm}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/view", api.handleView)
	mux.HandleFunc("/api/params", api.handleParams)
	mux.HandleFunc("/api/crosshair", api.handleCrosshair)
	mux.HandleFunc("/surface.png", api.handleSurface)
	mux.HandleFunc("/gaussian.png", api.handleGaussian)
	mux.Handle("/ws", newHub(s, cm))
	mux.Handle("/", newIndexHandler(s))
	return mux
}

func ServeHttp(s *session.Session, cm render.Colormap, serv string) error {
	return http.ListenAndServe(serv, NewHandler(s, cm))
}
