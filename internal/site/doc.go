// Package site turns a classified source tree into a rendered site.
//
// A full build runs its phases in a fixed order:
//
//	cache_includes -> partition -> render_posts -> auto_generate
//	                                           \-> render_files
//	                            -> copy_static
//
// Includes are rendered before anything else can reference them. Auto
// generated targets such as feeds start only after every post has finished,
// so they always see the complete post collection. Templated pages wait for
// posts for the same reason. Static files are copied alongside everything
// else. Ready fires once every counted unit of work has completed.
//
// Rebuild re-renders a single changed file without walking the tree.
package site
