// Package graphqlapi exposes activity ranking over GraphQL.
package graphqlapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"
)

const schemaSDL = `
	schema {
		query: Query
	}

	type ActivityScore {
		activity: String!
		score: Float!
	}

	type Query {
		rank(latitude: Float!, longitude: Float!): [ActivityScore!]!
		rankAddress(address: String!): [ActivityScore!]!
	}
`

// NewSchema parses the schema and binds it to the resolver.
func NewSchema(r *Resolver) (*graphql.Schema, error) {
	return graphql.ParseSchema(schemaSDL, r, graphql.MaxDepth(4))
}

// Register mounts the GraphQL endpoint on each path.
func Register(app *fiber.App, schema *graphql.Schema, paths ...string) {
	h := adaptor.HTTPHandler(&relay.Handler{Schema: schema})
	for _, p := range paths {
		app.Post(p, h)
	}
}
