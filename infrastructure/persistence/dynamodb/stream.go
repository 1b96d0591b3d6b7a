package dynamodb

import (
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"tablemate-backend/application/commands"
)

// Stream image decoding for the table's change feed. Lambda delivers stream
// records with its own attribute value type, so the images are unpacked by
// hand rather than through attributevalue.

// StreamEntityType reads the EntityType attribute from a stream image
func StreamEntityType(image map[string]events.DynamoDBAttributeValue) string {
	return streamString(image, "EntityType")
}

// DecodePlanSnapshot unpacks a plan stream image. A nil image (no before
// image on inserts, no after image on removes) decodes to an empty snapshot.
func DecodePlanSnapshot(image map[string]events.DynamoDBAttributeValue) commands.PlanSnapshot {
	if image == nil {
		return commands.PlanSnapshot{}
	}

	snapshot := commands.PlanSnapshot{
		PlanID:         streamString(image, "PlanID"),
		CreatorID:      streamString(image, "CreatorID"),
		CreatorCompany: streamString(image, "CreatorCompany"),
		Status:         streamString(image, "Status"),
		CuisineTypes:   streamStringList(image, "CuisineTypes"),
		MemberIDs:      streamStringList(image, "MemberIDs"),
		MaxMembers:     streamInt(image, "MaxMembers"),
		RestaurantName: streamString(image, "RestaurantName"),
	}

	if raw := streamString(image, "PlannedTime"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			snapshot.PlannedTime = t
		}
	}

	if attr, ok := image["ArrivalCodes"]; ok && attr.DataType() == events.DataTypeMap {
		codes := make(map[string]int, len(attr.Map()))
		for userID, value := range attr.Map() {
			if value.DataType() != events.DataTypeNumber {
				continue
			}
			if code, err := strconv.Atoi(value.Number()); err == nil {
				codes[userID] = code
			}
		}
		snapshot.ArrivalCodes = codes
	}

	return snapshot
}

// DecodeRatingRecord unpacks a rating stream image into the trigger command
func DecodeRatingRecord(image map[string]events.DynamoDBAttributeValue) commands.ApplyRatingCommand {
	cmd := commands.ApplyRatingCommand{
		RatingID:    streamString(image, "RatingID"),
		RatedUserID: streamString(image, "RatedUserID"),
	}
	if attr, ok := image["Value"]; ok && attr.DataType() == events.DataTypeNumber {
		if value, err := strconv.ParseFloat(attr.Number(), 64); err == nil {
			cmd.Value = value
		}
	}
	return cmd
}

func streamString(image map[string]events.DynamoDBAttributeValue, key string) string {
	attr, ok := image[key]
	if !ok || attr.DataType() != events.DataTypeString {
		return ""
	}
	return attr.String()
}

func streamInt(image map[string]events.DynamoDBAttributeValue, key string) int {
	attr, ok := image[key]
	if !ok || attr.DataType() != events.DataTypeNumber {
		return 0
	}
	value, err := strconv.Atoi(attr.Number())
	if err != nil {
		return 0
	}
	return value
}

func streamStringList(image map[string]events.DynamoDBAttributeValue, key string) []string {
	attr, ok := image[key]
	if !ok || attr.DataType() != events.DataTypeList {
		return nil
	}
	values := make([]string, 0, len(attr.List()))
	for _, item := range attr.List() {
		if item.DataType() == events.DataTypeString {
			values = append(values, item.String())
		}
	}
	return values
}
