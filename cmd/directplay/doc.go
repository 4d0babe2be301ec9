// Command directplay batch-converts video libraries so every file direct
// plays on common clients without server-side transcoding.
package main
