// Package source maps dependencies to the hosting-provider repositories
// whose contributors are acknowledged.
//
// # Locating
//
// [Locator.Locate] tries, for each descriptor:
//
//  1. The repository URL declared in the manifest (git dependencies).
//  2. A cached registry lookup by crate name ([Registry]).
//
// The URL is then normalized into a [Reference]. Descriptors that cannot be
// located, or whose repository lives on an unsupported host, are dropped
// with a warning. Extra sources supplied by the user skip the lookup and are
// labelled with their repository name.
//
// The result is a sorted list of [Target] values, one per distinct
// repository, each listing every dependency it serves.
//
// # URL Forms
//
// [ParseURL] accepts https, ssh, git:// and scp-like URLs, with or without a
// git+ prefix and .git suffix. Trailing tree or blob paths (monorepo links)
// are ignored. GitLab owners may contain subgroups.
package source
