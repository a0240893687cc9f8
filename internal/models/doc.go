// Package models defines the domain entities shared by the Bloomly front ends.
//
// The package contains two categories of types:
//
// 1. Catalog records: read-only data decoded from the external catalogs
//   - [Plant] : A species entry from the plant catalog
//   - [Track] : An ambient audio track from the music catalog
//
// 2. User data: records owned by the identity provider or the document store
//   - [User] : The authenticated identity (read-only to the rest of the app)
//   - [Account] : The identity provider's stored record behind a User
//   - [FavoritePlant] : A denormalized plant snapshot saved in a profile document
//   - [Profile] : A decoded user document, favorites plus untouched extra fields
package models
