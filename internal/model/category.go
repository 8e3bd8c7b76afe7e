package model

// CategoryModel 分类数据模型
type CategoryModel struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(50);not null;uniqueIndex:uq_categories_name"`
}

// TableName 指定表名
func (CategoryModel) TableName() string {
	return "categories"
}
