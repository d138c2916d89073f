// Package domain contains the core value types shared by the sitemap loader,
// the URL checker and the report writers. These types describe sitemap
// documents and per-URL check outcomes and are intentionally free of
// infrastructure concerns so they can be passed between packages unchanged.
package domain
