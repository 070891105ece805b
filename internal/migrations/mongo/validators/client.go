package validators

import "go.mongodb.org/mongo-driver/bson"

var ClientValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"email",
			"email_key",
			"total_bookings",
			"membership_tier",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"email": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"email_key": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 254,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"maxLength": 20,
			},

			"total_bookings": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"membership_tier": bson.M{
				"bsonType": "string",
				"enum": []string{
					"basic",
					"premium",
					"vip",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
