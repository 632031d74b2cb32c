// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// AsciiArtLogo is the stylized banner rendered by the root command help output.
const AsciiArtLogo = `
                           _                 _
  ___ __ _ _ __   __ _  __| | __ _ _ __ __ _| |__
 / __/ _' | '_ \ / _' |/ _' |/ _' | '__/ _' | '_ \
| (_| (_| | | | | (_| | (_| | (_| | | | (_| | |_) |
 \___\__,_|_| |_|\__,_|\__,_|\__, |_|  \__,_|_.__/
                             |___/`
