// Package listing models raw marketplace listings and the sources they are
// read from.
//
// A Listing is identified by Key, a short hash of its URL, which is also the
// primary key in the store. FileSource reads a JSON array of listings
// produced by an external scraper; DetailFetcher downloads each listing page
// to recover the full description and image gallery.
package listing
