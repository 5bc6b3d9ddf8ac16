// Package banner renders the startup banner.
package banner

import "fmt"

const art = `
  ___  ___  __ _| |_ __ _  __ _
 / __|/ _ \/ _` + "`" + ` | __/ _` + "`" + ` |/ _` + "`" + ` |
 \__ \  __/ (_| | || (_| | (_| |
 |___/\___|\__, |\__\__,_|\__, |
           |___/          |___/
`

// Banner returns the banner followed by the version line.
func Banner(version string) string {
	return fmt.Sprintf("%s  segtag %s - Chinese segmentation and tagging\n\n", art, version)
}
