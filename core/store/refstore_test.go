// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulab/sims-console/core/dto"
)

func classRef(classes []dto.Class, err error) *RefStore[dto.Class] {
	return NewRef(RefConfig[dto.Class]{
		Name:  "class",
		Label: "班级",
		List: func(ctx context.Context) ([]dto.Class, error) {
			return classes, err
		},
		Fields: func(c dto.Class) []string {
			return []string{c.ClassName, c.ClassCode}
		},
	}, &alertSpy{})
}

func TestRefStoreLoadAndFilter(t *testing.T) {
	s := classRef([]dto.Class{
		{ClassID: 1, ClassName: "计算机2023-1班", ClassCode: "CS2301"},
		{ClassID: 2, ClassName: "数学2023-1班", ClassCode: "MA2301"},
	}, nil)

	notified := 0
	s.Subscribe(func() { notified++ })
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 1, notified)
	assert.Len(t, s.Items(), 2)

	// filtering is local and matches any configured field
	assert.Len(t, s.Filter(""), 2)
	assert.Len(t, s.Filter("数学"), 1)
	assert.Len(t, s.Filter("cs2301"), 1)
	assert.Empty(t, s.Filter("不存在"))
}

func TestRefStoreFailedLoadKeepsItems(t *testing.T) {
	classes := []dto.Class{{ClassID: 1, ClassName: "计算机2023-1班", ClassCode: "CS2301"}}
	spy := &alertSpy{}
	listErr := error(nil)
	s := NewRef(RefConfig[dto.Class]{
		Name:  "class",
		Label: "班级",
		List: func(ctx context.Context) ([]dto.Class, error) {
			return classes, listErr
		},
		Fields: func(c dto.Class) []string { return []string{c.ClassName} },
	}, spy)

	require.NoError(t, s.Load(context.Background()))
	listErr = errors.New("boom")
	require.Error(t, s.Load(context.Background()))
	assert.Len(t, s.Items(), 1)
	assert.Equal(t, []string{"加载班级数据失败"}, spy.all())
}
