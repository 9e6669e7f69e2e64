package wsnav

import (
	"html/template"
	"io"
)

// ShellData fills the page shell.
type ShellData struct {
	Title  string
	WSPath string
}

// WriteShell writes the HTML page that hosts a thin client.
func WriteShell(w io.Writer, data ShellData) error {
	if data.WSPath == "" {
		data.WSPath = "/_nav/ws"
	}
	return shellTemplate.Execute(w, data)
}

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<div id="nav-loading" hidden>Loading…</div>
<main id="nav-view"></main>
<script>window.__NAV_WS_PATH__ = {{.WSPath}};</script>
<script>` + clientScript + `</script>
</body>
</html>
`))

// clientScript forwards same-origin anchor clicks and popstate events and
// applies push, replace and frame messages.
const clientScript = `
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function here() {
        return location.pathname + location.search + location.hash;
    }

    function send(msg) {
        if (ws && ws.readyState === WebSocket.OPEN) {
            ws.send(JSON.stringify(msg));
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var url = protocol + '//' + location.host + window.__NAV_WS_PATH__ +
            '?url=' + encodeURIComponent(here());
        ws = new WebSocket(url);

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'push':
                    history.pushState(null, '', msg.url);
                    break;
                case 'replace':
                    history.replaceState(null, '', msg.url);
                    break;
                case 'loadstart':
                    document.getElementById('nav-loading').hidden = false;
                    break;
                case 'loadend':
                    document.getElementById('nav-loading').hidden = true;
                    break;
                case 'frame':
                    if (msg.view) {
                        document.getElementById('nav-view').innerHTML = msg.view;
                    }
                    break;
                case 'error':
                    console.warn('[navrouter]', msg.error);
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    addEventListener('click', function(e) {
        if (e.defaultPrevented || e.button !== 0 || e.metaKey || e.ctrlKey || e.shiftKey || e.altKey) {
            return;
        }
        var a = e.target.closest && e.target.closest('a');
        if (!a || !a.href || a.target || a.origin !== location.origin) {
            return;
        }
        e.preventDefault();
        send({type: 'click', href: a.getAttribute('href')});
    });

    addEventListener('popstate', function() {
        send({type: 'popstate', url: here()});
    });

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
`
