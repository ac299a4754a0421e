// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package rewrite generates the Apache mod_rewrite rules that send requests for
missing generated image sizes to the proxy, and merges them into an existing
rules file.

Apache serves a generated size straight from disk when it exists. Only a miss
reaches the proxy, which redirects to Imgix:

	RewriteCond %{REQUEST_FILENAME} !-f
	RewriteRule ^(wp-content/uploads/.+-[0-9]+x[0-9]+\.(?:jpe?g|gif|png))$ /wp-content/plugins/mediagate/proxy/$1 [NC,L]
*/
package rewrite

import (
	"fmt"
	"regexp"
	"strings"
)

// Markers delimit the generated block so it can be replaced or removed.
const (
	BeginMarker = "# BEGIN mediagate"
	EndMarker   = "# END mediagate"
)

// Block returns the rule lines for uploadsDir (relative to the site root).
//
// A target starting with a scheme is another host, so the request is proxied
// with [P]; otherwise Apache rewrites internally.
func Block(uploadsDir, target string) []string {
	uploadsDir = strings.Trim(uploadsDir, "/")
	target = strings.TrimRight(target, "/")

	flags := "[NC,L]"
	if strings.Contains(target, "://") {
		flags = "[NC,P,L]"
	} else if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}

	return []string{
		BeginMarker,
		"RewriteCond %{REQUEST_FILENAME} !-f",
		fmt.Sprintf(`RewriteRule ^(%s/.+-[0-9]+x[0-9]+\.(?:jpe?g|gif|png))$ %s/$1 %s`,
			regexp.QuoteMeta(uploadsDir), target, flags),
		EndMarker,
	}
}

/*
Merge inserts block into rules.

Description: The block goes right before the last RewriteRule and the
RewriteCond lines that guard it, which in a WordPress install is the
catch-all front controller. Without any RewriteRule the block follows the
first line. A block from an earlier merge is replaced. Empty lines are
dropped.

Example:

	RewriteEngine On              RewriteEngine On
	RewriteBase /                 RewriteBase /
	RewriteRule ^index\.php$ -    RewriteRule ^index\.php$ -
	RewriteCond ... !-f     ==>   # BEGIN mediagate ... # END mediagate
	RewriteRule . /index.php      RewriteCond ... !-f
	                              RewriteRule . /index.php
*/
func Merge(rules string, block []string) string {
	lines := strings.Split(Remove(rules), "\n")

	i := len(lines) - 1
	foundRule := false
	for ; i > 0; i-- {
		if !foundRule {
			foundRule = strings.HasPrefix(lines[i], "RewriteRule")
		} else if !strings.HasPrefix(lines[i], "RewriteCond") {
			break
		}
	}

	merged := make([]string, 0, len(lines)+len(block))
	merged = append(merged, lines[:i+1]...)
	merged = append(merged, block...)
	merged = append(merged, lines[i+1:]...)
	return join(merged)
}

// Remove deletes a merged block from rules. Rules without a block come back
// with empty lines dropped.
func Remove(rules string) string {
	var kept []string
	inside := false
	for _, line := range strings.Split(rules, "\n") {
		switch strings.TrimSpace(line) {
		case BeginMarker:
			inside = true
			continue
		case EndMarker:
			inside = false
			continue
		}
		if !inside {
			kept = append(kept, line)
		}
	}
	return join(kept)
}

func join(lines []string) string {
	kept := lines[:0:0]
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			kept = append(kept, strings.TrimRight(line, "\r"))
		}
	}
	return strings.Join(kept, "\n")
}
