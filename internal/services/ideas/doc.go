// Package ideas is the post directory and composer: listing, reading,
// writing, and deleting short Markdown posts on behalf of a viewer.
//
// Every mutation is checked against a Policy before any backend call, and
// drafts are only visible to viewers the policy authorizes.
package ideas
