// Package cmsclient builds a cms.Client bound to one site of a multi-tenant
// CMS.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/sitecms-client/pkg/cms"
//	  "github.com/fivetwenty-io/sitecms-client/pkg/cmsclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := cmsclient.NewWithToken(ctx, "cms.example.com", "demo-site", "secret")
//	  if err != nil { log.Fatal(err) }
//
//	  post, err := cli.Blogs().Get(ctx, cms.BySlug("hello-world"))
//	  if err != nil { log.Fatal(err) }
//	  if post == nil { log.Print("no such post") }
//	}
//
// Environment
//
// LoadConfigFromEnv and NewFromEnv read CMS_BASE_URL, CMS_SITE_ID, CMS_TOKEN
// and the remaining cms.Config fields, for example CMS_MAX_RETRIES,
// CMS_CACHE_TTL=60s, CMS_CACHE_TYPE=redis and CMS_CACHE_REDIS_URL. A .env
// file is honored when present.
//
// The base URL gains an https:// scheme when it has none, and a trailing
// slash is dropped.
package cmsclient
