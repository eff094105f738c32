package sync

import "github.com/partbench/partsync/internal/models"

func componentFixture(uuid, name, owner string) models.Component {
	return models.Component{
		UUID: uuid,
		Name: name,
		Owner: models.Owner{
			UUID:     "owner-" + owner,
			Username: owner,
		},
	}
}

func modificationFixture(uuid, name, componentUUID string) models.Modification {
	return models.Modification{
		UUID:          uuid,
		Name:          name,
		ComponentUUID: componentUUID,
	}
}
