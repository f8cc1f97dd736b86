package devtools

import (
	"fmt"
	"html"
	"os"
	"strings"
	"time"

	"dungeonforge/pkg/game/dungeon"
)

// RenderHTML returns the whole map as a standalone HTML page
func RenderHTML(d *dungeon.Dungeon) string {
	var page strings.Builder

	page.WriteString(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Dungeon ` + html.EscapeString(d.Checksum) + `</title>
    <style>
        body {
            background-color: #1a1a2e;
            color: #eee;
            font-family: 'Courier New', monospace;
            padding: 20px;
        }
        .header {
            color: #bb86fc;
            font-size: 18px;
            margin-bottom: 10px;
        }
        .meta {
            color: #888;
            margin-bottom: 20px;
        }
        .map-container {
            background-color: #0f0f1a;
            padding: 20px;
            border-radius: 8px;
            display: inline-block;
            margin: 20px 0;
        }
        .map-row {
            white-space: pre;
            line-height: 1.2;
            font-size: 16px;
        }
        .wall { color: #444; }
        .floor { color: #aaa; }
        .corridor { color: #777; font-weight: bold; }
        .door { color: #ffff00; }
        .locked { color: #ff4444; font-weight: bold; }
        .secret { color: #ff66ff; }
        .marker { color: #00ff00; font-weight: bold; }
        .boss { color: #ff4444; font-weight: bold; }
        .treasure { color: #ffaa00; font-weight: bold; }
        .key { color: #4444ff; font-weight: bold; }
        .rooms {
            margin-top: 20px;
            color: #888;
        }
        .room { color: #ccc; margin: 5px 0; }
    </style>
</head>
<body>
`)

	fmt.Fprintf(&page, `    <div class="header">Seed %d &middot; %s</div>`+"\n", d.Seeds.Primary, html.EscapeString(string(d.Config.Algorithm)))
	fmt.Fprintf(&page, `    <div class="meta">Share code: %s &middot; checksum %s &middot; %dx%d</div>`+"\n",
		html.EscapeString(d.ShareCode()), html.EscapeString(d.Checksum), d.Width(), d.Height())

	page.WriteString(`    <div class="map-container">` + "\n")
	for _, row := range glyphs(d) {
		page.WriteString(`        <div class="map-row">`)
		// Runs of the same class share one span.
		for i := 0; i < len(row); {
			j := i
			var run strings.Builder
			for j < len(row) && row[j].class == row[i].class {
				run.WriteRune(row[j].icon)
				j++
			}
			fmt.Fprintf(&page, `<span class="%s">%s</span>`, row[i].class, html.EscapeString(run.String()))
			i = j
		}
		page.WriteString("</div>\n")
	}
	page.WriteString(`    </div>` + "\n")

	page.WriteString(`    <div class="rooms">` + "\n")
	for _, r := range d.Rooms {
		fmt.Fprintf(&page, `        <div class="room">%d &middot; %s &middot; %s</div>`+"\n",
			r.ID, html.EscapeString(r.Type.String()), html.EscapeString(r.Name))
	}
	page.WriteString(`    </div>` + "\n")

	page.WriteString(`</body>
</html>
`)
	return page.String()
}

// SaveScreenshotHTML writes RenderHTML output to a timestamped file in the
// working directory and returns its name.
func SaveScreenshotHTML(d *dungeon.Dungeon) (string, error) {
	filename := fmt.Sprintf("dungeon-%s.html", time.Now().Format("20060102-150405"))
	if err := os.WriteFile(filename, []byte(RenderHTML(d)), 0644); err != nil {
		return "", err
	}
	return filename, nil
}
