// Package github implements a mirror.TargetHost that manages mirror
// repositories on GitHub (cloud or enterprise). Configure with a Config
// containing the username, optional organisation, and personal access
// token. Push URLs embed the token and are rendered from a configurable
// template.
package github
