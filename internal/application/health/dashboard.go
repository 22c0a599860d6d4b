package health

import (
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"
)

// RenderDashboardHTML returns the status page served at GET /. The page
// re-polls /health/json a few times and then stops.
func RenderDashboardHTML(health CollectResult) string {
	payload, _ := json.Marshal(health)
	jsonStr := string(payload)
	// embedded in a JS template literal
	jsonStr = strings.ReplaceAll(jsonStr, "\\", "\\\\")
	jsonStr = strings.ReplaceAll(jsonStr, "`", "\\`")
	jsonStr = strings.ReplaceAll(jsonStr, "$", "\\$")

	headline := "All Systems Operational"
	headlineClass := ""
	if health.Status != "ok" {
		headline = "System Issues Detected"
		headlineClass = " down"
	}

	lastMethod, lastPath := "-", "-"
	if m, ok := health.Traffic.LastRequest.(map[string]interface{}); ok {
		if v, ok := m["method"].(string); ok {
			lastMethod = v
		}
		if v, ok := m["path"].(string); ok {
			lastPath = v
		}
	}

	names := make([]string, 0, len(health.Dependencies))
	for name := range health.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	var deps strings.Builder
	for _, name := range names {
		d := health.Dependencies[name]
		cls := "err"
		if d.Status == "connected" || d.Status == "reachable" {
			cls = "ok"
		}
		ping := "?"
		if p, ok := d.PingMs.(*int64); ok && p != nil {
			ping = fmt.Sprint(*p)
		}
		fmt.Fprintf(&deps, `<div class="row"><span>%s</span><span id="pill-%s" class="pill %s">%s · <span id="ping-%s">%s</span> ms</span></div>`,
			html.EscapeString(name), name, cls, html.EscapeString(d.Status), name, ping)
	}

	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>PesaGuru · API Status</title>
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <style>
    :root { --green: #0B6E4F; --dark: #12332B; --gold: #F2A900; --bg: #F6F8F7; --muted: #64748b; }
    body { background: var(--bg); color: var(--dark); font-family: system-ui, sans-serif; margin: 0; padding: 40px 20px; }
    .container { max-width: 1000px; margin: 0 auto; }
    h1 { font-size: 44px; font-weight: 900; letter-spacing: -2px; color: var(--green); margin: 0 0 8px; }
    h1.down { color: #B91C1C; }
    .subtext { color: var(--muted); font-weight: 700; margin-bottom: 28px; }
    .card { background: #fff; border-radius: 24px; box-shadow: 0 20px 60px -20px rgba(11,110,79,0.2); display: grid; grid-template-columns: repeat(3, 1fr); }
    .col { padding: 32px; border-right: 1px solid #eef2f0; }
    .col:last-child { border-right: none; }
    .label { text-transform: uppercase; font-size: 11px; font-weight: 900; letter-spacing: 2px; color: #94a3b8; margin-bottom: 18px; }
    .big { font-size: 38px; font-weight: 900; margin-bottom: 10px; }
    .row { display: flex; justify-content: space-between; padding: 7px 0; border-bottom: 1px solid #f1f5f9; font-size: 14px; font-weight: 700; }
    .pill { padding: 4px 10px; border-radius: 8px; font-size: 11px; font-weight: 900; }
    .ok { background: rgba(11,110,79,0.08); color: var(--green); }
    .err { background: rgba(239,68,68,0.08); color: #EF4444; }
    .footer { margin-top: 18px; font-family: monospace; font-size: 13px; color: var(--muted); }
    @media (max-width: 800px) { .card { grid-template-columns: 1fr; } .col { border-right: none; } }
  </style>
</head>
<body>
  <div class="container">
    <h1 id="headline" class="` + strings.TrimSpace(headlineClass) + `">` + headline + `</h1>
    <p class="subtext">PesaGuru goals and portfolio API · live dependency checks</p>
    <div class="card">
      <div class="col">
        <div class="label">Traffic</div>
        <div class="big" id="total-req">` + fmt.Sprint(health.Traffic.TotalRequests) + `</div>
        <div class="row"><span>Successful</span><span id="success-count">` + fmt.Sprint(health.Traffic.SuccessCount) + `</span></div>
        <div class="row"><span>Failed</span><span id="failed-count">` + fmt.Sprint(health.Traffic.FailedCount) + `</span></div>
        <div class="row"><span>Success Rate</span><span id="success-rate">` + health.Traffic.SuccessRate + `%</span></div>
        <div class="row"><span>Avg Latency</span><span id="avg-time">` + fmt.Sprint(health.Traffic.AvgResponseTime) + `ms</span></div>
      </div>
      <div class="col">
        <div class="label">Runtime</div>
        <div class="big" id="uptime">` + fmt.Sprint(health.Runtime.UptimeSeconds) + `s</div>
        <div class="row"><span>Heap Used</span><span id="mem-heap">` + fmt.Sprint(health.Runtime.Memory.HeapUsed) + ` MB</span></div>
        <div class="row"><span>Goroutines</span><span id="goroutines">` + fmt.Sprint(health.Runtime.Goroutines) + `</span></div>
        <div class="row"><span>Platform</span><span>` + health.Runtime.Platform + `</span></div>
        <div class="row"><span>Go</span><span>` + health.Runtime.GoVersion + `</span></div>
      </div>
      <div class="col">
        <div class="label">Dependencies</div>
        ` + deps.String() + `
      </div>
    </div>
    <div class="footer">last request: <span id="req-method">` + html.EscapeString(lastMethod) + `</span> <span id="req-path">` + html.EscapeString(lastPath) + `</span> · <a href="/health/errors">error log</a></div>
  </div>
  <script>
    let left = 3;
    const updateUI = (d) => {
      document.getElementById('total-req').innerText = d.traffic.totalRequests;
      document.getElementById('success-count').innerText = d.traffic.successCount;
      document.getElementById('failed-count').innerText = d.traffic.failedCount;
      document.getElementById('success-rate').innerText = d.traffic.successRate + '%';
      document.getElementById('avg-time').innerText = d.traffic.avgResponseTime + 'ms';
      document.getElementById('uptime').innerText = d.runtime.uptimeSeconds + 's';
      document.getElementById('mem-heap').innerText = d.runtime.memory.heapUsed + ' MB';
      document.getElementById('goroutines').innerText = d.runtime.goroutines;
      Object.entries(d.dependencies).forEach(([name, dep]) => {
        const pill = document.getElementById('pill-' + name);
        if (!pill) return;
        const ok = dep.status === 'connected' || dep.status === 'reachable';
        pill.className = 'pill ' + (ok ? 'ok' : 'err');
        document.getElementById('ping-' + name).innerText = dep.pingMs != null ? dep.pingMs : '?';
      });
      const hl = document.getElementById('headline');
      hl.innerText = d.status === 'ok' ? 'All Systems Operational' : 'System Issues Detected';
      hl.className = d.status === 'ok' ? '' : 'down';
    };
    async function tick() { if (left <= 0) return; try { const r = await fetch('/health/json'); updateUI(await r.json()); left--; } catch (e) {} }
    updateUI(JSON.parse(` + "`" + jsonStr + "`" + `));
    setInterval(tick, 10000);
  </script>
</body>
</html>`
}
