package entities

// Equipment — единица оборудования. Status — производное поле, вычисляется
// из последних статусов заявок при чтении, в БД не хранится.
type Equipment struct {
	ID               uint64
	SerialNumber     string
	Installed        bool
	Location         string
	EquipmentModelID *uint64
	InstitutionID    uint64
	Status           string

	EquipmentModel *EquipmentModel
	Institution    *Institution
}

type EquipmentModel struct {
	ID                  uint64
	Name                string
	EquipmentCategoryID uint64

	EquipmentCategory *EquipmentCategory
}

type EquipmentCategory struct {
	ID   uint64
	Name string
}
