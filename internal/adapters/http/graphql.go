package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/enekolm/aldapa/internal/core/domain"
	"github.com/enekolm/aldapa/internal/core/usecases"
	"github.com/enekolm/aldapa/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	summaryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PathSummary",
		Fields: graphql.Fields{
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"start_elevation": &graphql.Field{Type: graphql.Float},
			"end_elevation":   &graphql.Field{Type: graphql.Float},
			"min_elevation":   &graphql.Field{Type: graphql.Float},
			"max_elevation":   &graphql.Field{Type: graphql.Float},
		},
	})

	profilePointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProfilePoint",
		Fields: graphql.Fields{
			"point":     &graphql.Field{Type: geoPointType},
			"elevation": &graphql.Field{Type: graphql.Float},
		},
	})

	measurementType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Measurement",
		Fields: graphql.Fields{
			"id":              &graphql.Field{Type: graphql.String},
			"from":            &graphql.Field{Type: geoPointType},
			"to":              &graphql.Field{Type: geoPointType},
			"distance_meters": &graphql.Field{Type: graphql.Float},
			"sample_count":    &graphql.Field{Type: graphql.Int},
			"elevations":      &graphql.Field{Type: graphql.NewList(graphql.Float)},
			"summary":         &graphql.Field{Type: summaryType},
			"created_at":      &graphql.Field{Type: graphql.DateTime},
		},
	})

	profileResultType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProfileResult",
		Fields: graphql.Fields{
			"profile": &graphql.Field{Type: graphql.NewList(profilePointType)},
			"summary": &graphql.Field{Type: summaryType},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"measurements": &graphql.Field{
				Type:        graphql.NewList(measurementType),
				Description: "List persisted measurements, newest first",
				Args: graphql.FieldConfigArgument{
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 50},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					offset := p.Args["offset"].(int)
					limit := p.Args["limit"].(int)
					items, _, err := deps.Measurements.List(p.Context, offset, limit)
					return items, err
				},
			},
			"measurement": &graphql.Field{
				Type:        measurementType,
				Description: "Get a measurement by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Measurements.GetByID(p.Context, id)
				},
			},
			"profile": &graphql.Field{
				Type:        profileResultType,
				Description: "Compute an elevation profile between two points",
				Args: graphql.FieldConfigArgument{
					"from_lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"from_lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lat":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"to_lon":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from := domain.GeoPoint{Lat: p.Args["from_lat"].(float64), Lon: p.Args["from_lon"].(float64)}
					to := domain.GeoPoint{Lat: p.Args["to_lat"].(float64), Lon: p.Args["to_lon"].(float64)}

					profile, err := deps.Sampler.Profile(p.Context, from, to)
					if err != nil {
						return nil, err
					}
					distance := geospatial.Haversine(from.Lat, from.Lon, to.Lat, to.Lon)
					summary, err := usecases.Summarize(profile, distance)
					if err != nil {
						return nil, err
					}
					return map[string]interface{}{
						"profile": profile,
						"summary": summary,
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
