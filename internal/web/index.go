package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Focuslog</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --bg-primary: #f5f5f5;
            --bg-secondary: white;
            --text-primary: #333;
            --text-muted: #7f8c8d;
            --border-color: #eee;
            --accent-color: #3498db;
            --heading-color: #2c3e50;
            --shadow: rgba(0,0,0,0.1);
        }

        [data-theme="dark"] {
            --bg-primary: #1a1a1a;
            --bg-secondary: #2d2d2d;
            --text-primary: #e0e0e0;
            --text-muted: #a0a0a0;
            --border-color: #404040;
            --accent-color: #5dade2;
            --heading-color: #5dade2;
            --shadow: rgba(0,0,0,0.3);
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            padding: 20px;
        }

        .header { display: flex; justify-content: space-between; align-items: center; margin-bottom: 24px; }
        .current { color: var(--text-muted); }
        .current strong { color: var(--accent-color); }
        .actions a, .actions button {
            margin-left: 8px; padding: 6px 14px; border-radius: 50px;
            border: 2px solid var(--border-color); background: var(--bg-secondary);
            color: var(--text-primary); text-decoration: none; cursor: pointer;
        }

        .dashboard { display: flex; gap: 20px; flex-wrap: wrap; }
        .box {
            flex: 1; min-width: 320px; background: var(--bg-secondary);
            border-radius: 8px; box-shadow: 0 2px 4px var(--shadow); padding: 24px;
        }
        .box h2 {
            font-size: 1.3rem; margin-bottom: 16px; color: var(--heading-color);
            border-bottom: 2px solid var(--accent-color); padding-bottom: 8px;
        }

        .listing { max-height: calc(100vh - 260px); overflow-y: auto; }
        .row {
            display: flex; gap: 12px; align-items: center; position: relative;
            padding: 10px 8px; border-bottom: 1px solid var(--border-color);
        }
        .row::before {
            content: ''; position: absolute; left: 0; top: 0; height: 100%;
            width: var(--bar-width, 0%); background: var(--accent-color);
            opacity: 0.15; border-radius: 4px;
        }
        .row > * { position: relative; }
        .row.running .status { color: var(--accent-color); font-weight: 600; }
        .name { flex: 1; overflow: hidden; text-overflow: ellipsis; white-space: nowrap; }
        .time, .status { color: var(--text-muted); font-size: 0.9rem; }
        .pct { color: var(--accent-color); font-weight: 600; min-width: 4em; text-align: right; }
        .loading { color: var(--text-muted); font-style: italic; }
        .total { margin-top: 16px; font-weight: 600; color: var(--heading-color); }
    </style>
</head>
<body>
    <div class="header">
        <div>
            <h1>Focuslog</h1>
            <div class="current">Now: <strong id="current">-</strong></div>
        </div>
        <div class="actions">
            <a href="/api/export/log">Download log</a>
            <a href="/api/export/chart">Download chart</a>
            <button onclick="toggleTheme()">Theme</button>
        </div>
    </div>
    <div class="dashboard">
        <div class="box">
            <h2>Summary</h2>
            <div hx-get="/api/summary" hx-trigger="load, every 2s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
        <div class="box">
            <h2>Detailed Log</h2>
            <div hx-get="/api/segments" hx-trigger="load, every 2s" hx-swap="innerHTML">
                <div class="loading">Loading...</div>
            </div>
        </div>
    </div>
    <script>
        function setTheme(theme) {
            document.documentElement.setAttribute('data-theme', theme);
            localStorage.setItem('theme', theme);
        }

        function toggleTheme() {
            const current = document.documentElement.getAttribute('data-theme');
            setTheme(current === 'dark' ? 'light' : 'dark');
        }

        function connectStream() {
            const scheme = location.protocol === 'https:' ? 'wss://' : 'ws://';
            const ws = new WebSocket(scheme + location.host + '/api/stream');
            ws.onmessage = (event) => {
                const msg = JSON.parse(event.data);
                document.getElementById('current').textContent = msg.current || '-';
            };
            ws.onclose = () => setTimeout(connectStream, 3000);
        }

        const prefersDark = window.matchMedia('(prefers-color-scheme: dark)').matches;
        setTheme(localStorage.getItem('theme') || (prefersDark ? 'dark' : 'light'));
        connectStream();
    </script>
</body>
</html>`
