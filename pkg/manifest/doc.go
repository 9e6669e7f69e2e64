// Package manifest loads a site's routes from a JSON manifest and renders
// their views from a content store.
//
// Content lives on local disk (NewDirStore), in any fs.FS (NewFSStore) or in
// an S3 bucket (NewS3Store). Loader is a transition.Renderer that fetches
// view templates on first use and reports the route as pending meanwhile:
//
//	store := manifest.NewDirStore("site")
//	m, err := manifest.Load(ctx, store, "routes.json")
//	if err != nil {
//	    return err
//	}
//	routes, err := m.Router()
//	if err != nil {
//	    return err
//	}
//	renderer := manifest.NewLoader(store, manifest.WithRetry(2, 100*time.Millisecond))
package manifest
