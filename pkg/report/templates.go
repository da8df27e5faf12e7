package report

// The three page templates share one visual language: embedded CSS,
// stat cards, and gradient coverage bars colored by the
// high/medium/low classification.

const sharedCSS = `
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            background: #f5f5f5;
            padding: 20px;
            line-height: 1.6;
        }

        .container {
            max-width: 1400px;
            margin: 0 auto;
            background: white;
            padding: 30px;
            border-radius: 8px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }

        h1 {
            color: #333;
            margin-bottom: 10px;
            font-size: 26px;
        }

        .subtitle {
            color: #666;
            margin-bottom: 24px;
            font-size: 14px;
        }

        .back-link {
            display: inline-block;
            margin-bottom: 12px;
            color: #667eea;
            text-decoration: none;
            font-weight: 600;
            font-size: 13px;
        }

        .back-link:hover {
            text-decoration: underline;
        }

        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(180px, 1fr));
            gap: 15px;
            margin-bottom: 30px;
        }

        .stat-card {
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            padding: 18px;
            border-radius: 8px;
            color: white;
        }

        .stat-card.secondary {
            background: linear-gradient(135deg, #f093fb 0%, #f5576c 100%);
        }

        .stat-card.tertiary {
            background: linear-gradient(135deg, #4facfe 0%, #00f2fe 100%);
        }

        .stat-label {
            font-size: 11px;
            opacity: 0.9;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            margin-bottom: 8px;
        }

        .stat-value {
            font-size: 28px;
            font-weight: bold;
        }

        table.summary {
            width: 100%;
            border-collapse: collapse;
            margin-top: 10px;
        }

        table.summary th {
            background: #f8f9fa;
            padding: 12px;
            text-align: left;
            font-weight: 600;
            font-size: 12px;
            text-transform: uppercase;
            letter-spacing: 0.5px;
            color: #666;
            border-bottom: 2px solid #dee2e6;
        }

        table.summary td {
            padding: 12px;
            border-bottom: 1px solid #f0f0f0;
            font-size: 14px;
        }

        table.summary tr:hover {
            background: #f8f9fa;
        }

        .entry-name {
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
            font-size: 13px;
        }

        a {
            color: #667eea;
            text-decoration: none;
            font-weight: 600;
        }

        a:hover {
            text-decoration: underline;
        }

        .coverage-bar {
            display: flex;
            align-items: center;
            gap: 10px;
        }

        .bar-container {
            flex: 1;
            background: #e9ecef;
            height: 20px;
            border-radius: 10px;
            overflow: hidden;
            min-width: 90px;
        }

        .bar-fill {
            height: 100%;
        }

        .bar-fill.high { background: linear-gradient(90deg, #28a745, #20c997); }
        .bar-fill.medium { background: linear-gradient(90deg, #ffc107, #fd7e14); }
        .bar-fill.low { background: linear-gradient(90deg, #dc3545, #c82333); }

        .coverage-text {
            font-weight: 600;
            min-width: 62px;
            text-align: right;
            font-size: 13px;
        }

        .coverage-text.high { color: #28a745; }
        .coverage-text.medium { color: #f39c12; }
        .coverage-text.low { color: #dc3545; }

        .counts {
            color: #666;
            font-size: 12px;
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
            white-space: nowrap;
        }

        .footer {
            margin-top: 30px;
            padding-top: 12px;
            border-top: 1px solid #eee;
            color: #999;
            font-size: 12px;
        }
`

const coverageCell = `{{define "covcell"}}<td>
    <div class="coverage-bar">
        <div class="bar-container">
            <div class="bar-fill {{rateClass .}}" style="width: {{printf "%.1f" (rate .)}}%"></div>
        </div>
        <span class="coverage-text {{rateClass .}}">{{formatPct (rate .)}}</span>
    </div>
</td>
<td class="counts">{{formatInt .Hit}} / {{formatInt .Total}}</td>{{end}}`

const projectIndexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>` + sharedCSS + `</style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="subtitle">{{.Subtitle}}</div>

        <div class="stats-grid">
            <div class="stat-card">
                <div class="stat-label">Line Coverage</div>
                <div class="stat-value">{{formatPct (rate .Lines)}}</div>
            </div>
            {{if .ShowFunctions}}<div class="stat-card secondary">
                <div class="stat-label">Function Coverage</div>
                <div class="stat-value">{{formatPct (rate .Funcs)}}</div>
            </div>{{end}}
            {{if .ShowBranches}}<div class="stat-card tertiary">
                <div class="stat-label">Branch Coverage</div>
                <div class="stat-value">{{formatPct (rate .Branches)}}</div>
            </div>{{end}}
        </div>

        <table class="summary">
            <thead>
                <tr>
                    <th>Directory</th>
                    <th>Lines</th>
                    <th>Hit / Total</th>
                    {{if .ShowFunctions}}<th>Functions</th>
                    <th>Hit / Total</th>{{end}}
                    {{if .ShowBranches}}<th>Branches</th>
                    <th>Hit / Total</th>{{end}}
                </tr>
            </thead>
            <tbody>
                {{range .Rows}}
                <tr>
                    <td><a class="entry-name" href="{{.Href}}">{{.Name}}</a></td>
                    {{template "covcell" .Lines}}
                    {{if $.ShowFunctions}}{{template "covcell" .Funcs}}{{end}}
                    {{if $.ShowBranches}}{{template "covcell" .Branches}}{{end}}
                </tr>
                {{end}}
            </tbody>
        </table>

        <div class="footer">Generated at {{.GeneratedAt}}</div>
    </div>
</body>
</html>
` + coverageCell

const dirIndexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - {{.Dir}}</title>
    <style>` + sharedCSS + `</style>
</head>
<body>
    <div class="container">
        <a class="back-link" href="{{.RootHref}}">&larr; Back to overview</a>
        <h1>{{.Dir}}</h1>
        <div class="subtitle">{{.Subtitle}}</div>

        <div class="stats-grid">
            <div class="stat-card">
                <div class="stat-label">Line Coverage</div>
                <div class="stat-value">{{formatPct (rate .Lines)}}</div>
            </div>
            {{if .ShowFunctions}}<div class="stat-card secondary">
                <div class="stat-label">Function Coverage</div>
                <div class="stat-value">{{formatPct (rate .Funcs)}}</div>
            </div>{{end}}
            {{if .ShowBranches}}<div class="stat-card tertiary">
                <div class="stat-label">Branch Coverage</div>
                <div class="stat-value">{{formatPct (rate .Branches)}}</div>
            </div>{{end}}
        </div>

        <table class="summary">
            <thead>
                <tr>
                    <th>File</th>
                    <th>Lines</th>
                    <th>Hit / Total</th>
                    {{if .ShowFunctions}}<th>Functions</th>
                    <th>Hit / Total</th>{{end}}
                    {{if .ShowBranches}}<th>Branches</th>
                    <th>Hit / Total</th>{{end}}
                </tr>
            </thead>
            <tbody>
                {{range .Rows}}
                <tr>
                    <td><a class="entry-name" href="{{.Href}}">{{.Name}}</a></td>
                    {{template "covcell" .Lines}}
                    {{if $.ShowFunctions}}{{template "covcell" .Funcs}}{{end}}
                    {{if $.ShowBranches}}{{template "covcell" .Branches}}{{end}}
                </tr>
                {{end}}
            </tbody>
        </table>

        <div class="footer">Generated at {{.GeneratedAt}}</div>
    </div>
</body>
</html>
` + coverageCell

const sourceTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - {{.File}}</title>
    <style>` + sharedCSS + `
        table.source-code {
            width: 100%;
            border-collapse: collapse;
            font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
            font-size: 12px;
            line-height: 1.5;
            margin-top: 10px;
        }

        table.source-code td {
            padding: 0;
            vertical-align: top;
            border: none;
        }

        table.source-code td.line-num {
            width: 1px;
            min-width: 50px;
            padding: 0 10px 0 12px;
            text-align: right;
            color: #999;
            user-select: none;
            background: #fafafa;
            border-right: 1px solid #eee;
            white-space: nowrap;
        }

        table.source-code td.hit-count {
            width: 1px;
            min-width: 60px;
            padding: 0 10px;
            text-align: right;
            color: #555;
            background: #fafafa;
            border-right: 1px solid #eee;
            white-space: nowrap;
        }

        table.source-code td.line-content {
            padding: 0 12px;
            white-space: pre;
        }

        tr.cov-hit td.line-content, tr.cov-hit td.hit-count {
            background-color: rgba(40, 167, 69, 0.15);
        }

        tr.cov-none td.line-content, tr.cov-none td.hit-count {
            background-color: rgba(220, 53, 69, 0.15);
        }

        .legend {
            display: flex;
            gap: 14px;
            font-size: 11px;
            color: #666;
            margin-bottom: 10px;
        }

        .legend-item {
            display: flex;
            align-items: center;
            gap: 4px;
        }

        .legend-swatch {
            width: 14px;
            height: 14px;
            border-radius: 3px;
        }

        .legend-swatch.hit { background: rgba(40, 167, 69, 0.15); border: 1px solid rgba(40, 167, 69, 0.3); }
        .legend-swatch.miss { background: rgba(220, 53, 69, 0.15); border: 1px solid rgba(220, 53, 69, 0.3); }
        .legend-swatch.none { background: white; border: 1px solid #ddd; }

        .missing-notice {
            padding: 14px 16px;
            background: #fff3cd;
            border-left: 4px solid #ffc107;
            border-radius: 4px;
            font-size: 14px;
            margin-bottom: 16px;
        }
    </style>
</head>
<body>
    <div class="container">
        <a class="back-link" href="{{.DirHref}}">&larr; Back to directory</a>
        <h1 class="entry-name">{{.File}}</h1>
        <div class="subtitle">{{.Subtitle}}</div>

        <div class="stats-grid">
            <div class="stat-card">
                <div class="stat-label">Line Coverage</div>
                <div class="stat-value">{{formatPct (rate .Lines)}}</div>
            </div>
            {{if .ShowFunctions}}<div class="stat-card secondary">
                <div class="stat-label">Function Coverage</div>
                <div class="stat-value">{{formatPct (rate .Funcs)}}</div>
            </div>{{end}}
            {{if .ShowBranches}}<div class="stat-card tertiary">
                <div class="stat-label">Branch Coverage</div>
                <div class="stat-value">{{formatPct (rate .Branches)}}</div>
            </div>{{end}}
        </div>

        {{if .Missing}}
        <div class="missing-notice">Source file not found on disk. Showing instrumented line counts only.</div>
        {{end}}

        <div class="legend">
            <span class="legend-item"><span class="legend-swatch hit"></span> Covered</span>
            <span class="legend-item"><span class="legend-swatch miss"></span> Not covered</span>
            <span class="legend-item"><span class="legend-swatch none"></span> Not instrumented</span>
        </div>

        <table class="source-code">
            <tbody>
                {{range .Rows}}
                <tr class="{{.Class}}"><td class="line-num" id="L{{.Num}}">{{.Num}}</td><td class="hit-count">{{.Count}}</td><td class="line-content">{{.Text}}</td></tr>
                {{end}}
            </tbody>
        </table>

        <div class="footer">Generated at {{.GeneratedAt}}</div>
    </div>
</body>
</html>
`
